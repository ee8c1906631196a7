// internal/adapters/hotelapi/client.go
package hotelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_editor/internal/adapters/observability"
	"hotel_editor/internal/domain"
)

const (
	service   = "hotel_api"
	userAgent = "hotel-editor/1.0"
	// error bodies beyond this are truncated before logging
	maxErrorBody = 4096
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("hotel API base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("hotel API base URL: %w", err)
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Headers lists every header the client attaches to a request with the given
// method. No end-user credentials are ever forwarded.
func (c *Client) Headers(method string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	if c.key != "" {
		h.Set("X-API-Key", c.key)
	}
	if method == http.MethodPut {
		h.Set("Content-Type", "application/json")
	}
	return h
}

// ---- Public API ----

type hotelEnvelope struct {
	Hotel *domain.HotelRecord `json:"Hotel"`
}

func (c *Client) GetHotel(ctx context.Context, id string) (domain.HotelRecord, error) {
	var env hotelEnvelope
	if err := c.do(ctx, http.MethodGet, "get_hotel", c.hotelURL(id), nil, &env); err != nil {
		return domain.HotelRecord{}, err
	}
	if env.Hotel == nil {
		return domain.HotelRecord{}, errors.New("hotel api: response has no Hotel")
	}
	h := *env.Hotel
	if h.Rooms == nil {
		h.Rooms = []domain.RoomRecord{}
	}
	return h, nil
}

func (c *Client) UpdateHotel(ctx context.Context, id string, h domain.HotelRecord) error {
	// the id travels in the path only
	h.ID = ""
	if h.Rooms == nil {
		h.Rooms = []domain.RoomRecord{}
	}
	return c.do(ctx, http.MethodPut, "update_hotel", c.hotelURL(id), h, nil)
}

func (c *Client) hotelURL(id string) string {
	return fmt.Sprintf("%s/api/hotels/%s", c.base, url.PathEscape(id))
}

// ---- Internals ----

// do sends exactly one request. There are no retries: a failed call is
// reported to the caller, who decides what the user sees.
func (c *Client) do(ctx context.Context, method, endpoint, u string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	for k, vs := range c.Headers(method) {
		req.Header[k] = vs
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewAPIError(resp.StatusCode, bytes.TrimSpace(b))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
