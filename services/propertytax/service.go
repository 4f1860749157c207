package propertytax

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nhctax-backend/lib/scrapers/nhctax"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/propertytax")

// Service exposes the property tax search operations consumed by the
// tool transport. Operations never return a Go error: failures are
// folded into the response envelope so the transport layer has nothing
// to translate.
type Service struct {
	settings Settings
	session  *nhctax.Session
	caches   *responseCaches
}

func NewService(settings Settings) Service {
	rateDelay := time.Duration(0)
	if settings.RateLimitEnabled {
		rateDelay = settings.RateLimitDelay
	}

	s := Service{
		settings: settings,
		session:  nhctax.NewSession(rateDelay),
	}
	if settings.CacheEnabled {
		s.caches = newResponseCaches(settings.CacheMaxSize, settings.CacheDuration)
	}
	return s
}

// newClient builds a fresh scraping client per operation; only the
// session state is shared across concurrent calls.
func (s Service) newClient() (*nhctax.Client, error) {
	return nhctax.NewClient(nhctax.ClientOptions{
		BaseUrl: s.settings.BaseUrl,
		Session: s.session,
		Timeout: s.settings.RequestTimeout,
		Retry: nhctax.RetryPolicy{
			Attempts: s.settings.RetryAttempts,
			Delay:    s.settings.RetryDelay,
			Backoff:  s.settings.RetryBackoff,
		},
	})
}

func (s Service) SearchPropertyByOwner(ctx context.Context, ownerName string) SearchResponse {
	var cache *expirable.LRU[string, SearchResponse]
	if s.caches != nil {
		cache = s.caches.owner
	}
	return s.searchOperation(ctx, "owner", ownerName, cache, true,
		func(ctx context.Context, client *nhctax.Client) ([]nhctax.PropertyRecord, error) {
			return client.SearchByOwner(ctx, ownerName)
		})
}

func (s Service) SearchPropertyByAddress(ctx context.Context, address string) SearchResponse {
	var cache *expirable.LRU[string, SearchResponse]
	if s.caches != nil {
		cache = s.caches.address
	}
	return s.searchOperation(ctx, "address", address, cache, true,
		func(ctx context.Context, client *nhctax.Client) ([]nhctax.PropertyRecord, error) {
			return client.SearchByAddress(ctx, address)
		})
}

func (s Service) SearchPropertyByParcelID(ctx context.Context, parcelId string) SearchResponse {
	var cache *expirable.LRU[string, SearchResponse]
	if s.caches != nil {
		cache = s.caches.parcel
	}
	return s.searchOperation(ctx, "parcel_id", parcelId, cache, false,
		func(ctx context.Context, client *nhctax.Client) ([]nhctax.PropertyRecord, error) {
			return client.SearchByParcelID(ctx, parcelId)
		})
}

func (s Service) searchOperation(
	ctx context.Context,
	searchType string,
	query string,
	cache *expirable.LRU[string, SearchResponse],
	truncate bool,
	run func(context.Context, *nhctax.Client) ([]nhctax.PropertyRecord, error),
) SearchResponse {
	ctx, span := tracer.Start(ctx, "service:search")
	defer span.End()
	span.SetAttributes(attribute.String("search_type", searchType))

	log := slog.With("request_id", requestId(), "search_type", searchType)

	if cache != nil {
		if cached, hit := cache.Get(query); hit {
			log.InfoContext(ctx, "returning cached results", "query", query)
			return cached
		}
	}

	log.InfoContext(ctx, "searching properties", "query", query)

	client, err := s.newClient()
	if err != nil {
		return searchFailure(ctx, log, searchType, query, err)
	}
	results, err := run(ctx, client)
	if err != nil {
		return searchFailure(ctx, log, searchType, query, err)
	}

	truncated := false
	if truncate {
		if len(results) > s.settings.MaxResults {
			log.WarnContext(ctx, "results truncated", "from", len(results), "to", s.settings.MaxResults)
			results = results[:s.settings.MaxResults]
		}
		truncated = len(results) == s.settings.MaxResults
	}

	response := SearchResponse{
		Success:      true,
		SearchType:   searchType,
		Query:        query,
		ResultsCount: len(results),
		Properties:   results,
		Truncated:    truncated,
		Timestamp:    timestamp(),
	}

	if cache != nil {
		cache.Add(query, response)
	}
	return response
}

func searchFailure(ctx context.Context, log *slog.Logger, searchType, query string, err error) SearchResponse {
	log.ErrorContext(ctx, "search failed", "query", query, "err", err)

	response := SearchResponse{
		Success:    false,
		Error:      err.Error(),
		ErrorType:  ErrorTypeGeneral,
		SearchType: searchType,
		Query:      query,
	}
	var httpErr *nhctax.HTTPError
	if errors.As(err, &httpErr) {
		response.ErrorType = ErrorTypeHTTP
		response.StatusCode = httpErr.StatusCode
	}
	return response
}

// GetPropertyDetails re-searches by parcel id to locate the detail
// link, then scrapes the detail page. The parcel search cache is
// bypassed: its entries lack a guarantee of carrying a live detail
// link for the row this operation needs.
func (s Service) GetPropertyDetails(ctx context.Context, parcelId string) DetailResponse {
	ctx, span := tracer.Start(ctx, "service:GetPropertyDetails")
	defer span.End()

	log := slog.With("request_id", requestId())

	if s.caches != nil {
		if cached, hit := s.caches.detail.Get(parcelId); hit {
			log.InfoContext(ctx, "returning cached details", "parcel_id", parcelId)
			return cached
		}
	}

	log.InfoContext(ctx, "getting property details", "parcel_id", parcelId)

	client, err := s.newClient()
	if err != nil {
		return detailFailure(ctx, log, parcelId, err)
	}

	results, err := client.SearchByParcelID(ctx, parcelId)
	if err != nil {
		return detailFailure(ctx, log, parcelId, err)
	}
	if len(results) == 0 {
		return DetailResponse{
			Success:   false,
			Error:     "Property not found",
			ErrorType: ErrorTypeNotFound,
			ParcelID:  parcelId,
		}
	}

	basic := results[0]
	if basic.DetailURL == "" {
		return DetailResponse{
			Success:   false,
			Error:     "Detail URL not available",
			ErrorType: ErrorTypeNoDetailURL,
			ParcelID:  parcelId,
			BasicInfo: &basic,
		}
	}

	details := client.GetParcelDetails(ctx, basic.DetailURL)

	response := DetailResponse{
		Success:      true,
		ParcelID:     parcelId,
		BasicInfo:    &basic,
		DetailedInfo: details,
		Timestamp:    timestamp(),
	}

	if s.caches != nil {
		s.caches.detail.Add(parcelId, response)
	}
	return response
}

func detailFailure(ctx context.Context, log *slog.Logger, parcelId string, err error) DetailResponse {
	log.ErrorContext(ctx, "failed to get property details", "parcel_id", parcelId, "err", err)

	response := DetailResponse{
		Success:   false,
		Error:     err.Error(),
		ErrorType: ErrorTypeGeneral,
		ParcelID:  parcelId,
	}
	var httpErr *nhctax.HTTPError
	if errors.As(err, &httpErr) {
		response.ErrorType = ErrorTypeHTTP
		response.StatusCode = httpErr.StatusCode
	}
	return response
}

func (s Service) CheckSystemStatus(ctx context.Context) StatusResponse {
	ctx, span := tracer.Start(ctx, "service:CheckSystemStatus")
	defer span.End()

	log := slog.With("request_id", requestId())
	log.InfoContext(ctx, "checking system status")

	client, err := s.newClient()
	if err != nil {
		return statusFailure(ctx, log, err)
	}
	status, err := client.CheckStatus(ctx)
	if err != nil {
		return statusFailure(ctx, log, err)
	}

	return StatusResponse{
		SystemAvailable:    status.Available,
		StatusCode:         status.StatusCode,
		MaintenanceMode:    status.MaintenanceMode,
		HasExpectedContent: status.HasExpectedContent,
		ResponseTimeMS:     float64(status.ResponseTime.Microseconds()) / 1000,
		CheckTimestamp:     timestamp(),
	}
}

func statusFailure(ctx context.Context, log *slog.Logger, err error) StatusResponse {
	log.ErrorContext(ctx, "status check failed", "err", err)

	response := StatusResponse{
		SystemAvailable: false,
		Error:           err.Error(),
		ErrorType:       ErrorTypeGeneral,
		CheckTimestamp:  timestamp(),
	}
	var httpErr *nhctax.HTTPError
	if errors.As(err, &httpErr) {
		response.ErrorType = ErrorTypeHTTP
		response.StatusCode = httpErr.StatusCode
	}
	return response
}

func (s Service) GetSearchCapabilities() Capabilities {
	cached := s.settings.CacheEnabled
	return Capabilities{
		SearchTypes: []SearchType{
			{
				Type:        "owner",
				Description: "Search by property owner name",
				Parameters:  []string{"owner_name"},
				Cached:      cached,
			},
			{
				Type:        "address",
				Description: "Search by property address",
				Parameters:  []string{"address"},
				Cached:      cached,
			},
			{
				Type:        "parcel_id",
				Description: "Search by parcel identification number",
				Parameters:  []string{"parcel_id"},
				Cached:      cached,
			},
			{
				Type:        "property_details",
				Description: "Get detailed property information including assessments and ownership",
				Parameters:  []string{"parcel_id"},
				Cached:      cached,
			},
		},
		DataFields: []string{
			"parcel_id",
			"owner_name",
			"property_address",
			"tax_value",
			"detail_url",
			"search_timestamp",
		},
		Configuration: CapabilitiesConfig{
			BaseUrl:            s.settings.BaseUrl,
			CacheEnabled:       s.settings.CacheEnabled,
			CacheDurationHours: int(s.settings.CacheDuration.Hours()),
			RateLimitEnabled:   s.settings.RateLimitEnabled,
			RateLimitDelay:     s.settings.RateLimitDelay.Seconds(),
			MaxResults:         s.settings.MaxResults,
			RetryAttempts:      s.settings.RetryAttempts,
		},
		SystemInfo: "New Hanover County Property Tax Search v2.0",
	}
}

// ClearCache empties the caches matching the selector. An unknown
// selector matches nothing and reports an empty cleared list.
func (s Service) ClearCache(ctx context.Context, cacheType string) ClearCacheResponse {
	ctx, span := tracer.Start(ctx, "service:ClearCache")
	defer span.End()
	span.SetAttributes(attribute.String("cache_type", cacheType))

	log := slog.With("request_id", requestId())

	if s.caches == nil {
		return ClearCacheResponse{
			Success:      false,
			CacheEnabled: false,
			Error:        "Caching is disabled",
		}
	}

	log.InfoContext(ctx, "clearing cache", "cache_type", cacheType)

	cleared := []string{}
	if cacheType == CacheAll || cacheType == CacheOwner {
		s.caches.owner.Purge()
		cleared = append(cleared, CacheOwner)
	}
	if cacheType == CacheAll || cacheType == CacheAddress {
		s.caches.address.Purge()
		cleared = append(cleared, CacheAddress)
	}
	if cacheType == CacheAll || cacheType == CacheParcel {
		s.caches.parcel.Purge()
		cleared = append(cleared, CacheParcel)
	}
	if cacheType == CacheAll || cacheType == CacheDetail {
		s.caches.detail.Purge()
		cleared = append(cleared, CacheDetail)
	}

	return ClearCacheResponse{
		Success:       true,
		CacheEnabled:  true,
		ClearedCaches: cleared,
		Timestamp:     timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// short correlation id for log lines belonging to one operation
func requestId() string {
	return uuid.NewString()[:8]
}
