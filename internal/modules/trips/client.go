package trips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tripmate/internal/types"
)

// Backend is the trip persistence collaborator.
type Backend interface {
	List(ctx context.Context, userID string) ([]Trip, error)
	Create(ctx context.Context, body createBody) (Trip, error)
	AddLocation(ctx context.Context, tripID string, body addLocationBody) (types.Location, error)
}

// Client talks to the trips REST API rooted at baseURL (e.g. http://localhost:3000/api/ai).
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a Client. timeout bounds each request end to end.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// List fetches a user's trips. The backend may wrap them as {"trips": [...]} or send a bare array.
func (c *Client) List(ctx context.Context, userID string) ([]Trip, error) {
	body, err := c.do(ctx, http.MethodGet, "/trips?userId="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	raw := doc.Raw
	if !doc.IsArray() {
		raw = doc.Get("trips").Raw
	}
	if raw == "" || raw == "null" {
		return []Trip{}, nil
	}
	var out []Trip
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("trips: decode list: %w", err)
	}
	return out, nil
}

// Create posts a new trip and returns the stored record.
func (c *Client) Create(ctx context.Context, body createBody) (Trip, error) {
	raw, err := c.do(ctx, http.MethodPost, "/trips/create", body)
	if err != nil {
		return Trip{}, err
	}
	var trip Trip
	if t := gjson.GetBytes(raw, "trip"); t.Exists() {
		err = json.Unmarshal([]byte(t.Raw), &trip)
	} else {
		err = json.Unmarshal(raw, &trip)
	}
	if err != nil {
		return Trip{}, fmt.Errorf("trips: decode created trip: %w", err)
	}
	return trip, nil
}

// AddLocation appends one location to a trip.
func (c *Client) AddLocation(ctx context.Context, tripID string, body addLocationBody) (types.Location, error) {
	_, err := c.do(ctx, http.MethodPost, "/trips/"+url.PathEscape(tripID)+"/locations", body)
	if err != nil {
		return types.Location{}, err
	}
	return types.Location{Name: body.Name, Lat: body.Lat, Lng: body.Lng}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("trips: marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("trips: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trips: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("trips: %w: read response: %v", ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("trips: %s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := gjson.GetBytes(body, "error").String()
		return nil, fmt.Errorf("trips: %w: status %d %s", ErrUnavailable, resp.StatusCode, msg)
	}
	return body, nil
}
