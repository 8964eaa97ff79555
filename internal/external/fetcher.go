package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is a public demo resource.
const DefaultURL = "https://jsonplaceholder.typicode.com/posts/1"

const maxBody = 1 << 20

// ErrBadStatus wraps non-2xx responses.
var ErrBadStatus = errors.New("unexpected response status")

// Doer is the subset of *http.Client the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher loads a JSON document from a fixed URL.
type Fetcher struct {
	client  Doer
	url     string
	timeout time.Duration
}

// NewFetcher returns a Fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client Doer, url string, timeout time.Duration) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{client: client, url: url, timeout: timeout}
}

// URL is the resource being fetched.
func (f *Fetcher) URL() string { return f.url }

// Fetch GETs the resource and returns its body, which must be valid JSON.
func (f *Fetcher) Fetch(ctx context.Context) (json.RawMessage, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: %w: %d", f.url, ErrBadStatus, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get %s: response is not valid json", f.url)
	}
	return json.RawMessage(body), nil
}
