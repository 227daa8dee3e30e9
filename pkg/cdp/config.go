package cdp

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notifyhub/opencdp-go/pkg/types"
)

const (
	DefaultEndpoint = "https://api.opencdp.io/gateway/data-gateway/"
	DefaultTimeout  = 10 * time.Second
	MinTimeout      = time.Second
	DefaultRegion   = "us"
)

// CustomerIOSettings holds the credentials used for dual-write.
type CustomerIOSettings struct {
	SiteID string
	APIKey string
	Region string
}

// Config is the immutable client configuration. Build it with NewConfig.
type Config struct {
	apiKey          string
	endpoint        string
	timeout         time.Duration
	debug           bool
	failOnException bool
	logger          *zap.Logger
	dualWrite       bool
	customerIO      *CustomerIOSettings
	registerer      prometheus.Registerer
	rateLimit       int
	httpClient      *http.Client
	secondary       SecondaryProvider
	userAgent       string
}

// Option customises a Config.
type Option func(*Config)

// WithEndpoint sets the gateway base URL. A trailing "/" is added if missing.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) { c.endpoint = endpoint }
}

// WithTimeout sets the per-request timeout. Values below MinTimeout are
// raised to MinTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.timeout = d }
}

// WithDebug turns on diagnostic logging. Nothing is logged without it.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.debug = debug }
}

// WithFailOnException makes every operation return its failure as an error.
// When off, persons operations and Ping swallow failures and send operations
// report them in SendResult.
func WithFailOnException(fail bool) Option {
	return func(c *Config) { c.failOnException = fail }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// WithDualWrite enables mirroring identify, track and device registration to
// Customer.io. Credentials come from WithCustomerIO or, for tests and custom
// integrations, WithSecondaryProvider.
func WithDualWrite(enabled bool) Option {
	return func(c *Config) { c.dualWrite = enabled }
}

func WithCustomerIO(settings CustomerIOSettings) Option {
	return func(c *Config) { c.customerIO = &settings }
}

// WithSecondaryProvider replaces the Customer.io client used for dual-write.
func WithSecondaryProvider(p SecondaryProvider) Option {
	return func(c *Config) { c.secondary = p }
}

// WithMetrics registers the client's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) { c.registerer = reg }
}

// WithRateLimit caps requests per second for each channel (persons, email,
// push, sms). Zero disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(c *Config) { c.rateLimit = perSecond }
}

// WithHTTPClient supplies the HTTP client for gateway requests. The
// configured timeout is not applied to a supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Config) { c.userAgent = ua }
}

// NewConfig validates the options and returns a Config. Errors match
// types.ErrInvalidArgument.
func NewConfig(apiKey string, opts ...Option) (*Config, error) {
	c := &Config{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if strings.TrimSpace(c.apiKey) == "" {
		return nil, configError("apiKey cannot be empty")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, configError("endpoint must be an absolute URL")
	}
	if !strings.HasSuffix(c.endpoint, "/") {
		c.endpoint += "/"
	}

	if c.timeout < MinTimeout {
		c.timeout = MinTimeout
	}
	if c.rateLimit < 0 {
		return nil, configError("rate limit cannot be negative")
	}
	if c.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}

	if c.dualWrite && c.secondary == nil {
		if c.customerIO == nil {
			return nil, configError("customerIo configuration is required when dual-write is enabled")
		}
		if c.customerIO.SiteID == "" || c.customerIO.APIKey == "" {
			return nil, configError("customerIo siteId and apiKey are required")
		}
	}
	if c.customerIO != nil {
		settings := *c.customerIO
		if settings.Region == "" {
			settings.Region = DefaultRegion
		}
		c.customerIO = &settings
	}

	return c, nil
}

func configError(msg string) error {
	return &types.ValidationError{Message: msg}
}

func (c *Config) APIKey() string { return c.apiKey }

func (c *Config) Endpoint() string { return c.endpoint }

func (c *Config) Timeout() time.Duration { return c.timeout }

func (c *Config) Debug() bool { return c.debug }

func (c *Config) FailOnException() bool { return c.failOnException }

func (c *Config) Logger() *zap.Logger { return c.logger }

func (c *Config) DualWrite() bool { return c.dualWrite }

func (c *Config) RateLimit() int { return c.rateLimit }

// CustomerIO returns the dual-write credentials, if any were configured.
func (c *Config) CustomerIO() (CustomerIOSettings, bool) {
	if c.customerIO == nil {
		return CustomerIOSettings{}, false
	}
	return *c.customerIO, true
}
