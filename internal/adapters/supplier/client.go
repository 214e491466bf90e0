package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_merge/internal/adapters/observability"
	"hotel_merge/internal/domain"
)

type Options struct {
	Timeout time.Duration // covers every attempt of one Fetch
	Retries int           // extra attempts after the first
	RPS     int
	HTTP    *http.Client
}

// Client fetches the full hotel list published at one supplier URL.
type Client struct {
	name    string
	url     string
	hc      *http.Client
	rl      *rate.Limiter
	timeout time.Duration
	retries int
}

func New(name, rawURL string, opts Options) (*Client, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("supplier %q: bad url: %w", name, err)
	}
	if name == "" {
		name = NameFromURL(rawURL)
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		name:    name,
		url:     rawURL,
		hc:      hc,
		rl:      rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		timeout: opts.Timeout,
		retries: opts.Retries,
	}, nil
}

// NameFromURL uses the last path segment, e.g. .../suppliers/acme -> acme.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return rawURL
	}
	return path.Base(strings.TrimSuffix(u.Path, "/"))
}

func (c *Client) Name() string { return c.name }

func (c *Client) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out []json.RawMessage
	if err := c.get(ctx, &out); err != nil {
		return nil, fmt.Errorf("supplier %s: %w", c.name, err)
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

// get decodes the supplier's response into out. Transport errors, 429 and
// transient 5xx are retried up to c.retries times; anything else is final.
func (c *Client) get(ctx context.Context, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	for n := 0; ; n++ {
		again, delay, err := c.try(ctx, out, n)
		if err == nil || !again || n >= c.retries {
			return err
		}
		if werr := pause(ctx, delay); werr != nil {
			return werr
		}
	}
}

// try is one attempt. again reports whether the failure may be retried and
// delay how long to wait first.
func (c *Client) try(ctx context.Context, out any, n int) (again bool, delay time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-merge/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("supplier", c.name, 0, time.Since(start))
		if ctx.Err() != nil {
			return false, 0, ctx.Err()
		}
		return true, jittered(n), err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("supplier", c.name, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, 0, fmt.Errorf("decode: %w", err)
		}
		return false, 0, nil
	case transient(code):
		return true, retryDelay(resp.Header, n), fmt.Errorf("%w: %d", domain.ErrSupplierStatus, code)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, 0, fmt.Errorf("%w: %d: %s", domain.ErrSupplierStatus, code, strings.TrimSpace(string(b)))
	}
}

func transient(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// pause blocks for d; it returns ctx.Err() if ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryDelay honours a positive Retry-After (delta seconds or HTTP date),
// falling back to jittered exponential backoff.
func retryDelay(h http.Header, n int) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && time.Until(at) > 0 {
		return time.Until(at)
	}
	return jittered(n)
}

// jittered is 100ms doubled per attempt, plus up to half of that again.
func jittered(n int) time.Duration {
	base := 100 * time.Millisecond << n
	return base + rand.N(base/2+1)
}

// FromURLs builds one client per URL, preserving order.
func FromURLs(urls []string, opts Options) ([]domain.Supplier, error) {
	out := make([]domain.Supplier, 0, len(urls))
	for _, u := range urls {
		c, err := New(NameFromURL(u), u, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
