package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notifyhub/opencdp-go/pkg/cdp"
)

// Prefix is prepended to every variable name, e.g. CDP_API_KEY.
const Prefix = "cdp"

// Config holds the CLI configuration loaded from the environment.
// Only CDP_API_KEY is required.
type Config struct {
	APIKey          string        `envconfig:"api_key" required:"true"`
	Endpoint        string        `envconfig:"endpoint" default:"https://api.opencdp.io/gateway/data-gateway/"`
	Timeout         time.Duration `envconfig:"timeout" default:"10s"`
	Debug           bool          `envconfig:"debug" default:"false"`
	FailOnException bool          `envconfig:"fail_on_exception" default:"true"`
	RateLimit       int           `envconfig:"rate_limit" default:"0"`

	// Dual-write
	DualWrite        bool   `envconfig:"dual_write" default:"false"`
	CustomerIOSiteID string `envconfig:"customerio_site_id"`
	CustomerIOAPIKey string `envconfig:"customerio_api_key"`
	CustomerIORegion string `envconfig:"customerio_region" default:"us"`
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and then decodes the CDP_* variables. Variables that
// are already set win over file values, and missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

// ClientConfig builds the library configuration. reg may be nil.
func (c *Config) ClientConfig(logger *zap.Logger, reg prometheus.Registerer) (*cdp.Config, error) {
	opts := []cdp.Option{
		cdp.WithEndpoint(c.Endpoint),
		cdp.WithTimeout(c.Timeout),
		cdp.WithDebug(c.Debug),
		cdp.WithFailOnException(c.FailOnException),
		cdp.WithLogger(logger),
		cdp.WithRateLimit(c.RateLimit),
	}
	if reg != nil {
		opts = append(opts, cdp.WithMetrics(reg))
	}
	if c.DualWrite {
		opts = append(opts,
			cdp.WithDualWrite(true),
			cdp.WithCustomerIO(cdp.CustomerIOSettings{
				SiteID: c.CustomerIOSiteID,
				APIKey: c.CustomerIOAPIKey,
				Region: c.CustomerIORegion,
			}),
		)
	}
	return cdp.NewConfig(c.APIKey, opts...)
}
