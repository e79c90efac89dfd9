package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"reviewharvest/internal/adapters/observability"
)

// ErrBadStatus marks non-2xx responses. Callers log it and let the page
// contribute nothing; there is no retry protocol.
var ErrBadStatus = errors.New("fetch: bad status")

// maxBody caps response bodies; listing pages past this size are truncated.
const maxBody = 2 << 20

type Client struct {
	hc *http.Client
	rl *rate.Limiter
}

// New builds a sequential page fetcher. The limiter enforces a fixed
// courtesy delay between requests to the listing site; burst 1 keeps the
// first request immediate.
func New(delay time.Duration) *Client {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		hc: &http.Client{Timeout: 30 * time.Second},
		rl: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Fetch GETs one page with browser-like headers. Review sites answer bare
// clients with consent walls or empty shells, so the headers matter more
// than they look.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.6")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(req.URL.Host, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(req.URL.Host, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}
