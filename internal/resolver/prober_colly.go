package resolver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "md-check-link/1.0 (+https://github.com/JakeFAU/md-check-link)"

// CollyConfig controls the colly-backed prober.
type CollyConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyProber implements Prober on top of a gocolly collector. Each probe
// runs on a clone of the base collector so callbacks never cross requests.
type CollyProber struct {
	base *colly.Collector
}

// NewCollyProber builds a CollyProber. Non-2xx responses are surfaced as
// status codes rather than errors so the resolver can tell them apart from
// transport failures.
func NewCollyProber(cfg CollyConfig) *CollyProber {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.UserAgent(ua),
	)
	c.WithTransport(newHTTPTransport())
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.SetRequestTimeout(timeout)
	return &CollyProber{base: c}
}

// Probe issues one request and returns the response status code. Cancelling
// ctx aborts the request in flight.
func (p *CollyProber) Probe(ctx context.Context, method, url string, headers http.Header) (int, error) {
	collector := p.base.Clone()
	collector.Context = ctx
	var (
		status  int
		respErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		respErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Request(method, url, nil, colly.NewContext(), headers.Clone())
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s %s canceled: %w", method, url, ctx.Err())
	case err := <-done:
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", method, url, err)
		}
		if respErr != nil {
			return 0, fmt.Errorf("%s %s response: %w", method, url, respErr)
		}
		return status, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
