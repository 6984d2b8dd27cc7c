// Package vpic is a client for the NHTSA vehicle product information catalog.
package vpic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"carlens/internal/cache"
	"carlens/internal/domain"
)

// ErrStatus is wrapped when the service answers with a non-2xx status
var ErrStatus = errors.New("unexpected status")

type modelsResponse struct {
	Count   int    `json:"Count"`
	Message string `json:"Message"`
	Results []struct {
		MakeID    int    `json:"Make_ID"`
		MakeName  string `json:"Make_Name"`
		ModelID   int    `json:"Model_ID"`
		ModelName string `json:"Model_Name"`
	} `json:"Results"`
}

type typesResponse struct {
	Count   int    `json:"Count"`
	Message string `json:"Message"`
	Results []struct {
		VehicleTypeID   int    `json:"VehicleTypeId"`
		VehicleTypeName string `json:"VehicleTypeName"`
	} `json:"Results"`
}

// Client queries models and vehicle types for a make
type Client struct {
	baseURL    string
	httpClient *http.Client
	models     *cache.Cache[[]domain.ModelRecord]
	types      *cache.Cache[[]domain.VehicleTypeRecord]
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCaches puts response caches in front of both endpoints
func WithCaches(models *cache.Cache[[]domain.ModelRecord], types *cache.Cache[[]domain.VehicleTypeRecord]) Option {
	return func(c *Client) {
		c.models = models
		c.types = types
	}
}

// NewClient creates a client for the service rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelsURL returns the models endpoint for make
func (c *Client) ModelsURL(carMake string) string {
	return fmt.Sprintf("%s/GetModelsForMake/%s?format=json", c.baseURL, url.PathEscape(carMake))
}

// TypesURL returns the vehicle types endpoint for make
func (c *Client) TypesURL(carMake string) string {
	return fmt.Sprintf("%s/GetVehicleTypesForMake/%s?format=json", c.baseURL, url.PathEscape(carMake))
}

// ModelsForMake returns every model the service lists for make, in response order
func (c *Client) ModelsForMake(ctx context.Context, carMake string) ([]domain.ModelRecord, error) {
	u := c.ModelsURL(carMake)
	if c.models != nil {
		if records, ok := c.models.Get(u); ok {
			return records, nil
		}
	}

	var resp modelsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("get models for %q: %w", carMake, err)
	}

	records := make([]domain.ModelRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, domain.ModelRecord{
			MakeID:    r.MakeID,
			MakeName:  r.MakeName,
			ModelID:   r.ModelID,
			ModelName: r.ModelName,
		})
	}

	if c.models != nil {
		c.models.Set(u, records)
	}
	return records, nil
}

// VehicleTypesForMake returns the vehicle types the service lists for make, in response order
func (c *Client) VehicleTypesForMake(ctx context.Context, carMake string) ([]domain.VehicleTypeRecord, error) {
	u := c.TypesURL(carMake)
	if c.types != nil {
		if records, ok := c.types.Get(u); ok {
			return records, nil
		}
	}

	var resp typesResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("get vehicle types for %q: %w", carMake, err)
	}

	records := make([]domain.VehicleTypeRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, domain.VehicleTypeRecord{
			VehicleTypeID:   r.VehicleTypeID,
			VehicleTypeName: r.VehicleTypeName,
		})
	}

	if c.types != nil {
		c.types.Set(u, records)
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
