package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const (
	baseURL = "https://api.edinet-fsa.go.jp/api/v2"

	// Default access rate for EDINET. The API enforces a hard per-second
	// ceiling and offers no batch mode, so every outbound request of every
	// component goes through one shared limiter.
	limitRate = 1

	// A filing archive is a full ZIP package. Cap body reads so a
	// misbehaving upstream can't exhaust memory.
	maxBodyBytes = 64 << 20
)

// Doer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Limiter interface{ Wait(context.Context) error }

func New(opts ...ClientOption) *Client {
	c := &Client{}
	return c.applyOptions(opts...)
}

type ClientOption func(c *Client)

func WithHttpClient(client HttpRequestDoer) ClientOption {
	return func(c *Client) { c.client = client }
}

func WithRateLimiter(l Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

type Client struct {
	client  HttpRequestDoer
	limiter Limiter
	apiKey  string

	baseUrl string
}

func (self *Client) applyOptions(opts ...ClientOption) *Client {
	for _, fn := range opts {
		fn(self)
	}

	if self.client == nil {
		self.client = &http.Client{}
	}

	if self.limiter == nil {
		self.limiter = rate.NewLimiter(limitRate, 1)
	}

	return self
}

func (self *Client) WithBaseURL(url string) *Client {
	self.baseUrl = url
	return self
}

func (self *Client) BaseURL() string {
	if self.baseUrl == "" {
		return baseURL
	}
	return self.baseUrl
}

// WithAPIKey sets the Subscription-Key sent with every request. EDINET
// rejects keyless requests, see ErrAuth.
func (self *Client) WithAPIKey(key string) *Client {
	self.apiKey = key
	return self
}

func (self *Client) Get(ctx context.Context, url string, query url.Values,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create new GET request for %q: %w", url, err)
	}

	if query == nil {
		query = req.URL.Query()
	}
	query.Set("Subscription-Key", self.apiKey)
	req.URL.RawQuery = query.Encode()

	if err := self.limitRate(ctx); err != nil {
		return nil, fmt.Errorf("rate limit GET %s: %w", url, err)
	}

	resp, err := self.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	return resp, nil
}

func (self *Client) limitRate(ctx context.Context) error {
	if self.limiter != nil {
		if err := self.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait: %w", err)
		}
	}
	return nil
}

func (self *Client) GetJSON(ctx context.Context, url string, query url.Values,
	value any,
) error {
	resp, err := self.Get(ctx, url, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode > maxExpectedStatusCode {
		return fmt.Errorf("GET %s: %w", url, newUnexpectedStatusError(resp))
	}
	if err != nil {
		return fmt.Errorf("read body from GET %s: %w", url, err)
	}

	if err := json.Unmarshal(body, value); err != nil {
		return fmt.Errorf("unmarshal GET %s: %w", url, err)
	}

	return nil
}

func (self *Client) endpointURL(parts ...string) (string, error) {
	url, err := url.JoinPath(self.BaseURL(), parts...)
	if err != nil {
		return "", fmt.Errorf("join path %v: %w", parts, err)
	}
	return url, nil
}
