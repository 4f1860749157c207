package propertytax

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nhctax-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

type portalFixture struct {
	mu         sync.Mutex
	searches   int
	resultRows string
	failSearch bool
}

func (p *portalFixture) searchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searches
}

func (p *portalFixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Property Tax Search</title></head><body>Search property records</body></html>`)
	})
	mux.HandleFunc("/pt/search/commonsearch.aspx", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<input type="hidden" name="__VIEWSTATE" value="vs" />
				<input type="hidden" name="__EVENTVALIDATION" value="ev" />`)
			return
		}

		p.mu.Lock()
		p.searches++
		fail := p.failSearch
		rows := p.resultRows
		p.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if rows == "" {
			fmt.Fprint(w, `<html><body>No records found.</body></html>`)
			return
		}
		fmt.Fprintf(w, `<table class="SearchResults">
			<tr><th>Parcel</th><th>Owner</th><th>Address</th><th>Value</th></tr>
			%s
		</table>`, rows)
	})
	mux.HandleFunc("/pt/Datalets/Datalet.aspx", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<table>
			<tr><td>Owner Name</td><td>SMITH JOHN A</td></tr>
			<tr><td>Total Value</td><td>$250,000</td></tr>
		</table>`)
	})
	return mux
}

const smithRows = `
	<tr><td><a href="/pt/Datalets/Datalet.aspx?sIndex=1">R100</a></td><td>SMITH JOHN A</td><td>123 MARKET ST</td><td>$250,000</td></tr>
	<tr><td><a href="/pt/Datalets/Datalet.aspx?sIndex=2">R101</a></td><td>SMITH JANE B</td><td>125 MARKET ST</td><td>$260,000</td></tr>`

func testSettings(baseUrl string) Settings {
	return Settings{
		BaseUrl:          baseUrl,
		RequestTimeout:   time.Second * 5,
		RetryAttempts:    1,
		RetryDelay:       time.Millisecond,
		RetryBackoff:     1,
		RateLimitEnabled: false,
		CacheEnabled:     true,
		CacheDuration:    time.Minute,
		CacheMaxSize:     100,
		MaxResults:       500,
	}
}

func newFixture(t *testing.T) (*portalFixture, Settings, func()) {
	t.Helper()
	t.Cleanup(testutil.SetupService(t, "propertytax"))
	portal := &portalFixture{resultRows: smithRows}
	server := httptest.NewServer(portal.handler())
	return portal, testSettings(server.URL), server.Close
}

func TestSearchPropertyByOwner(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	service := NewService(settings)

	response := service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.True(t, response.Success)
	require.Equal(t, "owner", response.SearchType)
	require.Equal(t, "SMITH", response.Query)
	require.Equal(t, 2, response.ResultsCount)
	require.Len(t, response.Properties, 2)
	require.False(t, response.Truncated)
	require.NotEmpty(t, response.Timestamp)
	require.Equal(t, 1, portal.searchCount())

	// second identical query is served from cache
	cached := service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.True(t, cached.Success)
	require.Equal(t, response.Timestamp, cached.Timestamp)
	require.Equal(t, 1, portal.searchCount())

	// a different query goes back to the portal
	service.SearchPropertyByOwner(context.Background(), "JONES")
	require.Equal(t, 2, portal.searchCount())
}

func TestSearchTruncation(t *testing.T) {
	_, settings, close := newFixture(t)
	defer close()
	settings.MaxResults = 1
	service := NewService(settings)

	response := service.SearchPropertyByAddress(context.Background(), "MARKET ST")
	require.True(t, response.Success)
	require.Equal(t, 1, response.ResultsCount)
	require.True(t, response.Truncated)
	require.Equal(t, "R100", response.Properties[0].ParcelID)
}

func TestSearchParcelNeverTruncates(t *testing.T) {
	_, settings, close := newFixture(t)
	defer close()
	settings.MaxResults = 1
	service := NewService(settings)

	response := service.SearchPropertyByParcelID(context.Background(), "R100")
	require.True(t, response.Success)
	require.Equal(t, 2, response.ResultsCount)
	require.False(t, response.Truncated)
}

func TestSearchFailure(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	portal.failSearch = true
	service := NewService(settings)

	response := service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.False(t, response.Success)
	require.Equal(t, ErrorTypeHTTP, response.ErrorType)
	require.Equal(t, http.StatusInternalServerError, response.StatusCode)
	require.NotEmpty(t, response.Error)

	// failures are never cached
	portal.mu.Lock()
	portal.failSearch = false
	portal.mu.Unlock()
	response = service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.True(t, response.Success)
}

func TestGetPropertyDetails(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	service := NewService(settings)

	response := service.GetPropertyDetails(context.Background(), "R100")
	require.True(t, response.Success)
	require.Equal(t, "R100", response.ParcelID)
	require.NotNil(t, response.BasicInfo)
	require.Equal(t, "SMITH JOHN A", response.BasicInfo.OwnerName)
	require.Equal(t, "SMITH JOHN A", response.DetailedInfo["owner_name"])
	require.Equal(t, "$250,000", response.DetailedInfo["total_value"])

	require.Equal(t, 1, portal.searchCount())
	cached := service.GetPropertyDetails(context.Background(), "R100")
	require.Equal(t, response.Timestamp, cached.Timestamp)
	require.Equal(t, 1, portal.searchCount())
}

func TestGetPropertyDetailsNotFound(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	portal.resultRows = ""
	service := NewService(settings)

	response := service.GetPropertyDetails(context.Background(), "R000")
	require.False(t, response.Success)
	require.Equal(t, ErrorTypeNotFound, response.ErrorType)
	require.Equal(t, "Property not found", response.Error)
	require.Equal(t, "R000", response.ParcelID)
}

func TestGetPropertyDetailsNoDetailURL(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	portal.resultRows = `<tr><td>R100</td><td>SMITH JOHN A</td></tr>`
	service := NewService(settings)

	response := service.GetPropertyDetails(context.Background(), "R100")
	require.False(t, response.Success)
	require.Equal(t, ErrorTypeNoDetailURL, response.ErrorType)
	require.NotNil(t, response.BasicInfo)
	require.Equal(t, "SMITH JOHN A", response.BasicInfo.OwnerName)
}

func TestCheckSystemStatus(t *testing.T) {
	_, settings, close := newFixture(t)
	defer close()
	service := NewService(settings)

	response := service.CheckSystemStatus(context.Background())
	require.True(t, response.SystemAvailable)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.False(t, response.MaintenanceMode)
	require.True(t, response.HasExpectedContent)
	require.Greater(t, response.ResponseTimeMS, 0.0)
	require.NotEmpty(t, response.CheckTimestamp)
}

func TestGetSearchCapabilities(t *testing.T) {
	_, settings, close := newFixture(t)
	defer close()
	service := NewService(settings)

	capabilities := service.GetSearchCapabilities()
	require.Len(t, capabilities.SearchTypes, 4)
	require.Equal(t, "owner", capabilities.SearchTypes[0].Type)
	require.True(t, capabilities.SearchTypes[0].Cached)
	require.Contains(t, capabilities.DataFields, "parcel_id")
	require.Equal(t, settings.BaseUrl, capabilities.Configuration.BaseUrl)
	require.Equal(t, 500, capabilities.Configuration.MaxResults)
	require.Equal(t, "New Hanover County Property Tax Search v2.0", capabilities.SystemInfo)
}

func TestClearCache(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	service := NewService(settings)

	service.SearchPropertyByOwner(context.Background(), "SMITH")
	service.SearchPropertyByAddress(context.Background(), "MARKET ST")
	require.Equal(t, 2, portal.searchCount())

	response := service.ClearCache(context.Background(), CacheOwner)
	require.True(t, response.Success)
	require.True(t, response.CacheEnabled)
	require.Equal(t, []string{CacheOwner}, response.ClearedCaches)

	// owner cache is cold again, address cache untouched
	service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.Equal(t, 3, portal.searchCount())
	service.SearchPropertyByAddress(context.Background(), "MARKET ST")
	require.Equal(t, 3, portal.searchCount())

	all := service.ClearCache(context.Background(), CacheAll)
	require.True(t, all.Success)
	require.Equal(t, []string{CacheOwner, CacheAddress, CacheParcel, CacheDetail}, all.ClearedCaches)

	unknown := service.ClearCache(context.Background(), "bogus")
	require.True(t, unknown.Success)
	require.Empty(t, unknown.ClearedCaches)
}

func TestClearCacheDisabled(t *testing.T) {
	_, settings, close := newFixture(t)
	defer close()
	settings.CacheEnabled = false
	service := NewService(settings)

	response := service.ClearCache(context.Background(), CacheAll)
	require.False(t, response.Success)
	require.False(t, response.CacheEnabled)
	require.Equal(t, "Caching is disabled", response.Error)
}

func TestCacheExpiry(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	settings.CacheDuration = time.Millisecond * 50
	service := NewService(settings)

	service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.Equal(t, 1, portal.searchCount())

	time.Sleep(time.Millisecond * 120)

	service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.Equal(t, 2, portal.searchCount())
}

func TestCachingDisabledSearches(t *testing.T) {
	portal, settings, close := newFixture(t)
	defer close()
	settings.CacheEnabled = false
	service := NewService(settings)

	service.SearchPropertyByOwner(context.Background(), "SMITH")
	service.SearchPropertyByOwner(context.Background(), "SMITH")
	require.Equal(t, 2, portal.searchCount())
}
