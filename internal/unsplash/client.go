// Package unsplash searches photos on the Unsplash API.
package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"carlens/internal/cache"
	"carlens/internal/domain"
)

var (
	// ErrStatus is wrapped when the service answers with a non-2xx status
	ErrStatus = errors.New("unexpected status")
	// ErrMissingAccessKey is returned before any request when no key was configured
	ErrMissingAccessKey = errors.New("unsplash access key not configured")
)

type searchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

// Client searches photos with a fixed access key
type Client struct {
	baseURL    string
	accessKey  string
	perPage    int
	httpClient *http.Client
	pages      *cache.Cache[[]domain.ImageResult]
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPerPage sets how many results one search returns
func WithPerPage(n int) Option {
	return func(c *Client) { c.perPage = n }
}

// WithCache puts a cache of result pages in front of the search endpoint
func WithCache(pages *cache.Cache[[]domain.ImageResult]) Option {
	return func(c *Client) { c.pages = pages }
}

// NewClient creates a client for the service rooted at baseURL
func NewClient(baseURL, accessKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  accessKey,
		perPage:    1,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL returns the first-page search URL for query
func (c *Client) SearchURL(query string) string {
	v := url.Values{}
	v.Set("query", query)
	v.Set("per_page", strconv.Itoa(c.perPage))
	v.Set("client_id", c.accessKey)
	return c.baseURL + "/search/photos?" + v.Encode()
}

// SearchPhotos returns the first page of photos matching query
func (c *Client) SearchPhotos(ctx context.Context, query string) ([]domain.ImageResult, error) {
	if c.accessKey == "" {
		return nil, ErrMissingAccessKey
	}

	u := c.SearchURL(query)
	if c.pages != nil {
		if page, ok := c.pages.Get(u); ok {
			return page, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("search photos for %q: %w", query, err)
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search photos for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search photos for %q: %w: %s", query, ErrStatus, resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search photos for %q: decode response: %w", query, err)
	}

	page := make([]domain.ImageResult, 0, len(body.Results))
	for _, r := range body.Results {
		page = append(page, domain.ImageResult{
			URL:      r.URLs.Regular,
			Author:   r.User.Name,
			HTMLLink: r.Links.HTML,
		})
	}

	if c.pages != nil {
		c.pages.Set(u, page)
	}
	return page, nil
}
