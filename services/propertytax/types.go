package propertytax

import "nhctax-backend/lib/scrapers/nhctax"

const (
	ErrorTypeHTTP        = "http_error"
	ErrorTypeGeneral     = "general_error"
	ErrorTypeNotFound    = "not_found"
	ErrorTypeNoDetailURL = "no_detail_url"
)

// SearchResponse is the envelope every search operation returns, and
// the exact value the response caches hold. Timestamps are RFC 3339
// UTC.
type SearchResponse struct {
	Success      bool                    `json:"success"`
	SearchType   string                  `json:"search_type,omitempty"`
	Query        string                  `json:"query,omitempty"`
	ResultsCount int                     `json:"results_count"`
	Properties   []nhctax.PropertyRecord `json:"properties,omitempty"`
	Truncated    bool                    `json:"truncated"`
	Timestamp    string                  `json:"timestamp,omitempty"`
	Error        string                  `json:"error,omitempty"`
	ErrorType    string                  `json:"error_type,omitempty"`
	StatusCode   int                     `json:"status_code,omitempty"`
}

type DetailResponse struct {
	Success      bool                   `json:"success"`
	ParcelID     string                 `json:"parcel_id,omitempty"`
	BasicInfo    *nhctax.PropertyRecord `json:"basic_info,omitempty"`
	DetailedInfo nhctax.PropertyDetail  `json:"detailed_info,omitempty"`
	Timestamp    string                 `json:"timestamp,omitempty"`
	Error        string                 `json:"error,omitempty"`
	ErrorType    string                 `json:"error_type,omitempty"`
	StatusCode   int                    `json:"status_code,omitempty"`
}

type StatusResponse struct {
	SystemAvailable    bool    `json:"system_available"`
	StatusCode         int     `json:"status_code,omitempty"`
	MaintenanceMode    bool    `json:"maintenance_mode"`
	HasExpectedContent bool    `json:"has_expected_content"`
	ResponseTimeMS     float64 `json:"response_time_ms"`
	CheckTimestamp     string  `json:"check_timestamp"`
	Error              string  `json:"error,omitempty"`
	ErrorType          string  `json:"error_type,omitempty"`
}

type ClearCacheResponse struct {
	Success       bool     `json:"success"`
	CacheEnabled  bool     `json:"cache_enabled"`
	ClearedCaches []string `json:"cleared_caches,omitempty"`
	Timestamp     string   `json:"timestamp,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type SearchType struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	Cached      bool     `json:"cached"`
}

type CapabilitiesConfig struct {
	BaseUrl            string  `json:"base_url"`
	CacheEnabled       bool    `json:"cache_enabled"`
	CacheDurationHours int     `json:"cache_duration_hours"`
	RateLimitEnabled   bool    `json:"rate_limit_enabled"`
	RateLimitDelay     float64 `json:"rate_limit_delay"`
	MaxResults         int     `json:"max_results"`
	RetryAttempts      int     `json:"retry_attempts"`
}

// Capabilities is a static descriptor of what the service can do; it
// never touches the network.
type Capabilities struct {
	SearchTypes   []SearchType       `json:"search_types"`
	DataFields    []string           `json:"data_fields"`
	Configuration CapabilitiesConfig `json:"configuration"`
	SystemInfo    string             `json:"system_info"`
}
