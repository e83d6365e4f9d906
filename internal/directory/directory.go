// Package directory talks to the external scheduling and roster API
// (Planning Center shaped). All lookups are read-only; failures here
// degrade the answer rather than failing the conversation.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avandyck/shepherd/internal/config"
)

// Client is an authenticated HTTP client for the directory API.
type Client struct {
	baseURL string
	appID   string
	secret  string
	http    *http.Client
	logger  *slog.Logger

	throttleEvery int
	throttleDelay time.Duration
	lookupWindow  int

	mu           sync.Mutex
	requests     int
	serviceTypes map[string]string // name -> id, cached after first load
}

func New(cfg config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.DirectoryBaseURL, "/"),
		appID:         cfg.DirectoryAppID,
		secret:        cfg.DirectorySecret,
		http:          &http.Client{Timeout: cfg.DirectoryTimeout},
		logger:        logger,
		throttleEvery: cfg.ThrottleEvery,
		throttleDelay: cfg.ThrottleDelay,
		lookupWindow:  cfg.LookupWindowDays,
	}
}

// Configured reports whether credentials are present. An unconfigured
// client answers every lookup with ErrUnavailable so callers can omit
// the source.
func (c *Client) Configured() bool {
	return c.appID != "" && c.secret != ""
}

var ErrUnavailable = fmt.Errorf("directory not available")

// envelope is the JSON:API response shape the directory speaks.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Included []resource      `json:"included"`
	Links    struct {
		Next string `json:"next"`
	} `json:"links"`
}

type resource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

// throttle pauses after every Nth request so batch lookups never
// hammer the API. The pause honors context cancellation.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	c.requests++
	pause := c.throttleEvery > 0 && c.requests%c.throttleEvery == 0
	c.mu.Unlock()

	if !pause {
		return nil
	}
	c.logger.Debug("throttling directory requests", "after", c.throttleEvery, "delay", c.throttleDelay)
	timer := time.NewTimer(c.throttleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (envelope, error) {
	if !c.Configured() {
		return envelope{}, ErrUnavailable
	}
	if err := c.throttle(ctx); err != nil {
		return envelope{}, err
	}

	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return envelope{}, fmt.Errorf("build directory request: %w", err)
	}
	req.SetBasicAuth(c.appID, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("directory request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return envelope{}, fmt.Errorf("directory request %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode directory response %s: %w", endpoint, err)
	}
	return env, nil
}

// getAll follows pagination links until exhausted, collecting every
// data resource.
func (c *Client) getAll(ctx context.Context, endpoint string, params url.Values) ([]resource, []resource, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("per_page", "100")

	var data, included []resource
	for endpoint != "" {
		env, err := c.get(ctx, endpoint, params)
		if err != nil {
			return nil, nil, err
		}
		page, err := decodeResources(env.Data)
		if err != nil {
			return nil, nil, err
		}
		data = append(data, page...)
		included = append(included, env.Included...)

		endpoint = ""
		params = nil
		if env.Links.Next != "" {
			next := strings.TrimPrefix(env.Links.Next, c.baseURL)
			endpoint = next
		}
	}
	return data, included, nil
}

// decodeResources accepts either a single resource object or an array.
func decodeResources(raw json.RawMessage) ([]resource, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []resource
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode resource list: %w", err)
		}
		return list, nil
	}
	var one resource
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return []resource{one}, nil
}
