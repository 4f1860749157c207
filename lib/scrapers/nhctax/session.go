package nhctax

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SearchMode selects which portal form field a query targets. The
// value doubles as the portal's `mode` query parameter.
type SearchMode string

const (
	ModeOwner    SearchMode = "owner"
	ModeAddress  SearchMode = "address"
	ModeParcel   SearchMode = "parid"
	ModeAdvanced SearchMode = "advanced"
)

// The portal keeps its anti-forgery tokens valid for roughly twenty
// minutes; refresh anything older than fifteen.
const tokenMaxAge = 15 * time.Minute

// TokenPair holds the ASP.NET anti-forgery values a search submission
// must echo back. Either value may be empty when the portal omits the
// corresponding hidden input.
type TokenPair struct {
	ViewState       string
	EventValidation string
}

type tokenEntry struct {
	pair      TokenPair
	fetchedAt time.Time
}

// TokenStore caches one token pair per search mode.
type TokenStore struct {
	mu      sync.Mutex
	maxAge  time.Duration
	entries map[SearchMode]tokenEntry
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		maxAge:  tokenMaxAge,
		entries: make(map[SearchMode]tokenEntry),
	}
}

// Get returns the cached token pair for the mode while it is still
// fresh, otherwise refreshes it through fetch. Fetch failures degrade
// to an empty pair and are not stored; the portal will reject the
// following submission and the search call surfaces that as an HTTP
// error. The store mutex is held across the whole sequence so
// concurrent callers trigger at most one refresh per freshness window.
func (s *TokenStore) Get(ctx context.Context, mode SearchMode, fetch func(context.Context) (TokenPair, error)) TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[mode]; ok && time.Since(entry.fetchedAt) < s.maxAge {
		return entry.pair
	}

	pair, err := fetch(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch form tokens", "mode", string(mode), "err", err)
		return TokenPair{}
	}

	s.entries[mode] = tokenEntry{pair: pair, fetchedAt: time.Now()}
	return pair
}

// Session is the process-wide mutable state shared by every Client:
// the per-mode token cache and the request spacing stamp. Top-level
// operations construct a fresh Client per call but hand each one the
// same Session.
type Session struct {
	Tokens  *TokenStore
	Limiter *RateLimiter
}

func NewSession(rateDelay time.Duration) *Session {
	return &Session{
		Tokens:  NewTokenStore(),
		Limiter: NewRateLimiter(rateDelay),
	}
}
