package nhctax

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"nhctax-backend/lib/restyutil"
)

const DefaultBaseUrl = "https://etax.nhcgov.com"

const searchPath = "/pt/search/commonsearch.aspx"

const (
	fieldViewState       = "__VIEWSTATE"
	fieldEventValidation = "__EVENTVALIDATION"
	fieldSearchButton    = "ctl00$cphPage$btnSearch"
)

var modeFields = map[SearchMode]string{
	ModeOwner:   "ctl00$cphPage$txtOwner",
	ModeAddress: "ctl00$cphPage$txtAddress",
	ModeParcel:  "ctl00$cphPage$txtParID",
}

// RetryPolicy bounds how stubbornly a client retries a failed request.
// Waits grow as Delay * Backoff^attemptIndex between attempts.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
}

type ClientOptions struct {
	BaseUrl string
	// Session carries the process-wide token cache and rate limiter.
	// Left nil, the client gets a private unlimited session, which is
	// only sensible in tests.
	Session *Session
	Timeout time.Duration
	Retry   RetryPolicy
}

// Client scrapes the county tax portal. Construct one per top-level
// operation; the expensive shared state lives in the Session.
type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	session *Session
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.Session == nil {
		opts.Session = NewSession(0)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	retry := opts.Retry
	if retry.Attempts <= 0 {
		retry.Attempts = 3
	}
	if retry.Delay <= 0 {
		retry.Delay = time.Second * 2
	}
	if retry.Backoff <= 0 {
		retry.Backoff = 2
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	// every attempt, retries included, goes through the limiter
	limiter := opts.Session.Limiter
	client.OnBeforeRequest(func(_ *resty.Client, _ *resty.Request) error {
		limiter.Acquire()
		return nil
	})

	client.SetRetryCount(retry.Attempts - 1)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.IsError()
	})
	client.SetRetryAfter(func(_ *resty.Client, res *resty.Response) (time.Duration, error) {
		attempt := 1
		if res != nil && res.Request != nil {
			attempt = res.Request.Attempt
		}
		wait := time.Duration(float64(retry.Delay) * math.Pow(retry.Backoff, float64(attempt-1)))
		slog.Warn("request failed, retrying", "attempt", attempt, "wait", wait)
		return wait, nil
	})

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		baseUrl: baseUrl,
		http:    client,
		session: opts.Session,
	}, nil
}

func (c *Client) SearchByOwner(ctx context.Context, ownerName string) ([]PropertyRecord, error) {
	return c.search(ctx, ModeOwner, ownerName)
}

func (c *Client) SearchByAddress(ctx context.Context, address string) ([]PropertyRecord, error) {
	return c.search(ctx, ModeAddress, address)
}

func (c *Client) SearchByParcelID(ctx context.Context, parcelId string) ([]PropertyRecord, error) {
	return c.search(ctx, ModeParcel, parcelId)
}

func (c *Client) search(ctx context.Context, mode SearchMode, query string) ([]PropertyRecord, error) {
	ctx, span := tracer.Start(ctx, "client:search")
	defer span.End()
	span.SetAttributes(attribute.String("mode", string(mode)))

	tokens := c.session.Tokens.Get(ctx, mode, func(ctx context.Context) (TokenPair, error) {
		return c.fetchTokens(ctx, mode)
	})

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("mode", string(mode)).
		SetFormData(map[string]string{
			fieldViewState:       tokens.ViewState,
			fieldEventValidation: tokens.EventValidation,
			modeFields[mode]:     query,
			fieldSearchButton:    "Search",
		}).
		Post(searchPath)
	if err != nil {
		span.SetStatus(codes.Error, "search request failed")
		return nil, &HTTPError{Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search request rejected")
		return nil, &HTTPError{StatusCode: res.StatusCode()}
	}

	return ParseResults(res.String(), c.baseUrl), nil
}

// fetchTokens loads the mode's search page and pulls the hidden
// anti-forgery inputs out of it. The portal omits them for some modes,
// in which case the values come back empty.
func (c *Client) fetchTokens(ctx context.Context, mode SearchMode) (TokenPair, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("mode", string(mode)).
		Get(searchPath)
	if err != nil {
		return TokenPair{}, err
	}
	if res.IsError() {
		return TokenPair{}, &HTTPError{StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		ViewState:       doc.Find("input[name=__VIEWSTATE]").AttrOr("value", ""),
		EventValidation: doc.Find("input[name=__EVENTVALIDATION]").AttrOr("value", ""),
	}, nil
}

// GetParcelDetails scrapes a detail page. Failures never propagate:
// detail fetches run per-row in batches and one bad page must not sink
// the rest, so errors fold into the returned mapping.
func (c *Client) GetParcelDetails(ctx context.Context, detailUrl string) PropertyDetail {
	ctx, span := tracer.Start(ctx, "client:GetParcelDetails")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(detailUrl)
	if err == nil && res.IsError() {
		err = &HTTPError{StatusCode: res.StatusCode()}
	}
	if err != nil {
		span.SetStatus(codes.Error, "detail fetch failed")
		slog.ErrorContext(ctx, "failed to scrape detail page", "url", detailUrl, "err", err)
		return PropertyDetail{
			KeyDetailURL:        detailUrl,
			KeyError:            err.Error(),
			KeyScrapedTimestamp: time.Now().UTC().Format(time.RFC3339),
		}
	}

	return ParseDetails(res.String(), detailUrl)
}

// Status reports whether the portal looks usable.
type Status struct {
	Available          bool
	StatusCode         int
	MaintenanceMode    bool
	HasExpectedContent bool
	ResponseTime       time.Duration
}

func (c *Client) CheckStatus(ctx context.Context) (Status, error) {
	ctx, span := tracer.Start(ctx, "client:CheckStatus")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return Status{}, &HTTPError{Err: err}
	}
	if res.IsError() {
		return Status{}, &HTTPError{StatusCode: res.StatusCode()}
	}

	content := strings.ToLower(res.String())
	maintenance := strings.Contains(content, "maintenance")
	hasPropertySystem := strings.Contains(content, "property") &&
		(strings.Contains(content, "tax") || strings.Contains(content, "search"))
	titleCheck := strings.Contains(content, "tax") || strings.Contains(content, "property")

	return Status{
		Available:          !maintenance && res.StatusCode() == 200 && (hasPropertySystem || titleCheck),
		StatusCode:         res.StatusCode(),
		MaintenanceMode:    maintenance,
		HasExpectedContent: hasPropertySystem || titleCheck,
		ResponseTime:       res.Time(),
	}, nil
}
