package cli

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
)

// Client is a thin HTTP client for the simarketd read API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Assets(ctx context.Context, class string) (map[string]any, error) {
	path := "/v1/assets"
	if class != "" {
		path += "?class=" + url.QueryEscape(class)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, &out)
	return out, err
}

func (c *Client) Asset(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/assets/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) Prices(ctx context.Context, class string) (map[string]any, error) {
	path := "/v1/prices"
	if class != "" {
		path += "?class=" + url.QueryEscape(class)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, &out)
	return out, err
}

func (c *Client) Price(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/prices/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) Market(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", &out)
	return out, err
}

func (c *Client) Portfolio(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/portfolio", &out)
	return out, err
}

func (c *Client) Clock(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/clock", &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, out any) error {
	return c.jsonRequestBody(ctx, method, path, nil, out)
}

func (c *Client) jsonRequestBody(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
