package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// Searcher runs one provider query and returns the raw JSON document.
type Searcher interface {
	Search(ctx context.Context, query string) (gjson.Result, error)
}

// SerpClient queries SerpAPI's Google engine.
type SerpClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewSerpClient builds a client. baseURL is the full search.json endpoint.
func NewSerpClient(baseURL, apiKey string, timeout time.Duration) *SerpClient {
	return &SerpClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *SerpClient) Search(ctx context.Context, query string) (gjson.Result, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("serpapi: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("serpapi: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("serpapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, fmt.Errorf("serpapi: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("serpapi: invalid JSON response")
	}
	doc := gjson.ParseBytes(body)
	if msg := doc.Get("error"); msg.Exists() {
		return gjson.Result{}, fmt.Errorf("serpapi: api error: %s", msg.String())
	}
	return doc, nil
}
