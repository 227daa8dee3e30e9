package provider

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

	"github.com/google/uuid"

	"github.com/notifyhub/opencdp-go/internal/domain"
)

const (
	DefaultUserAgent = "opencdp-go/1"

	// maxResponseBytes caps how much of a response body is buffered.
	maxResponseBytes = 1 << 20
)

// ResponseHook is called once per attempted request. Status is 0 when no
// response was received.
type ResponseHook func(method, path string, status int, elapsed time.Duration)

// GatewayConfig configures a Gateway. BaseURL and APIKey are required.
type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	OnResponse ResponseHook
}

// Gateway talks JSON over HTTP to the CDP data gateway. Paths passed to Do
// are resolved against the base URL, so the base URL must end in "/".
type Gateway struct {
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	httpClient *http.Client
	onResponse ResponseHook
}

// Response is a buffered 2xx gateway response.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Gateway{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		httpClient: httpClient,
		onResponse: cfg.OnResponse,
	}, nil
}

// Do sends payload (JSON-encoded, if non-nil) to path and buffers the reply.
// A connection failure is reported as domain.ErrTransport and a non-2xx reply
// as *StatusError.
func (g *Gateway) Do(ctx context.Context, method, path string, payload any) (*Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	target := g.baseURL.ResolveReference(ref)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.observe(method, path, 0, start)
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	g.observe(method, path, resp.StatusCode, start)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
	}

	return &Response{Status: resp.StatusCode, Body: raw, RequestID: requestID}, nil
}

func (g *Gateway) observe(method, path string, status int, start time.Time) {
	if g.onResponse != nil {
		g.onResponse(method, path, status, time.Since(start))
	}
}

// StatusError is returned by Gateway.Do when the gateway answers with a
// non-2xx status. The body is kept so callers can surface the server's reason.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Unwrap() error { return domain.ErrUnexpectedStatus }

// ServerMessage returns the "message" field of a JSON error body, if any.
func (e *StatusError) ServerMessage() (string, bool) {
	if len(e.Body) == 0 {
		return "", false
	}
	var body struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil || body.Message == nil {
		return "", false
	}
	return *body.Message, true
}

// compile-time check that Gateway implements Doer
var _ Doer = (*Gateway)(nil)
