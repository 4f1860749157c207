package propertytax

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache category selectors accepted by ClearCache.
const (
	CacheAll     = "all"
	CacheOwner   = "owner"
	CacheAddress = "address"
	CacheParcel  = "parcel"
	CacheDetail  = "detail"
)

// responseCaches holds one TTL+capacity bounded cache per query
// category. The instances are fully independent: clearing one never
// touches the others.
type responseCaches struct {
	owner   *expirable.LRU[string, SearchResponse]
	address *expirable.LRU[string, SearchResponse]
	parcel  *expirable.LRU[string, SearchResponse]
	detail  *expirable.LRU[string, DetailResponse]
}

func newResponseCaches(size int, ttl time.Duration) *responseCaches {
	return &responseCaches{
		owner:   expirable.NewLRU[string, SearchResponse](size, nil, ttl),
		address: expirable.NewLRU[string, SearchResponse](size, nil, ttl),
		parcel:  expirable.NewLRU[string, SearchResponse](size, nil, ttl),
		detail:  expirable.NewLRU[string, DetailResponse](size, nil, ttl),
	}
}
