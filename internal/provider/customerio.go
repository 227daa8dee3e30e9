package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	RegionUS = "us"
	RegionEU = "eu"

	customerIOTrackUS = "https://track.customer.io/api/v1"
	customerIOTrackEU = "https://track-eu.customer.io/api/v1"
)

// CustomerIOConfig configures the Customer.io Track API client.
// BaseURL overrides the region's endpoint; tests point it at a local server.
type CustomerIOConfig struct {
	SiteID     string
	APIKey     string
	Region     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// CustomerIO mirrors person updates to Customer.io through its Track API.
type CustomerIO struct {
	baseURL    string
	siteID     string
	apiKey     string
	httpClient *http.Client
}

func NewCustomerIO(cfg CustomerIOConfig) (*CustomerIO, error) {
	if strings.TrimSpace(cfg.SiteID) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("customer.io site id and api key are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch strings.ToLower(cfg.Region) {
		case "", RegionUS:
			baseURL = customerIOTrackUS
		case RegionEU:
			baseURL = customerIOTrackEU
		default:
			return nil, fmt.Errorf("unknown customer.io region %q", cfg.Region)
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &CustomerIO{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		siteID:     cfg.SiteID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Identify creates or updates the customer's attributes.
func (c *CustomerIO) Identify(ctx context.Context, id string, attributes map[string]any) error {
	if attributes == nil {
		attributes = map[string]any{}
	}
	return c.call(ctx, http.MethodPut, customerPath(id), attributes)
}

// Track records a named event against the customer.
func (c *CustomerIO) Track(ctx context.Context, id, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	return c.call(ctx, http.MethodPost, customerPath(id)+"/events", map[string]any{
		"name": name,
		"data": data,
	})
}

// AddDevice registers a push device for the customer. Extra data is merged
// into the device object next to id and platform.
func (c *CustomerIO) AddDevice(ctx context.Context, id, deviceID, platform string, data map[string]any) error {
	device := make(map[string]any, len(data)+2)
	for k, v := range data {
		device[k] = v
	}
	device["id"] = deviceID
	device["platform"] = platform

	return c.call(ctx, http.MethodPut, customerPath(id)+"/devices", map[string]any{"device": device})
}

func (c *CustomerIO) call(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.siteID, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected customer.io status: %d", resp.StatusCode)
	}
	return nil
}

func customerPath(id string) string {
	return "/customers/" + url.PathEscape(id)
}

// compile-time check that CustomerIO implements Secondary
var _ Secondary = (*CustomerIO)(nil)
