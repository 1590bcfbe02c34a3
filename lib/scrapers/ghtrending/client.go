package ghtrending

import (
	"context"
	"fmt"
	"time"
	"trending-etl/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultUrl     = "https://github.com/trending"
	DefaultOrigin  = "https://github.com"
	DefaultTimeout = time.Second * 30
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// FetchError is returned when the listing page could not be retrieved,
// StatusCode is 0 when no response was received at all.
type FetchError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Url, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Url, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ClientOptions struct {
	// zero or negative falls back to DefaultTimeout, a fetch never waits forever
	Timeout   time.Duration
	UserAgent string
	// routes requests through a transport that mimics a browser's TLS and headers
	CloudflareBypass bool
	// receives the raw HTTP exchanges while debug logging is enabled, can be nil
	Output restyutil.InstrumentOutput
}

type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("user-agent", userAgent)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	restyutil.InstrumentClient(client, tracer, opts.Output)

	return &Client{http: client}
}

// Fetch returns the body of the page at `link`. It does not retry.
func (c *Client) Fetch(ctx context.Context, link string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &FetchError{Url: link, Err: err}
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, res.Status())
		return nil, &FetchError{
			Url:        link,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("status %d", res.StatusCode()),
		}
	}

	return res.Body(), nil
}
