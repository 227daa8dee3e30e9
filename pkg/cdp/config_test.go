package cdp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifyhub/opencdp-go/internal/cdptest"
	"github.com/notifyhub/opencdp-go/pkg/cdp"
	"github.com/notifyhub/opencdp-go/pkg/types"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := cdp.NewConfig("key")
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.APIKey())
	assert.Equal(t, cdp.DefaultEndpoint, cfg.Endpoint())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.False(t, cfg.Debug())
	assert.False(t, cfg.FailOnException())
	assert.False(t, cfg.DualWrite())
	assert.NotNil(t, cfg.Logger())
	assert.Zero(t, cfg.RateLimit())

	_, ok := cfg.CustomerIO()
	assert.False(t, ok)
}

func TestNewConfig_TimeoutFloor(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{500 * time.Millisecond, time.Second},
		{0, time.Second},
		{time.Second, time.Second},
		{2500 * time.Millisecond, 2500 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(tc.in.String(), func(t *testing.T) {
			cfg, err := cdp.NewConfig("key", cdp.WithTimeout(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Timeout())
		})
	}
}

func TestNewConfig_EndpointNormalized(t *testing.T) {
	cfg, err := cdp.NewConfig("key", cdp.WithEndpoint("https://cdp.example.com/gateway"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdp.example.com/gateway/", cfg.Endpoint())

	_, err = cdp.NewConfig("key", cdp.WithEndpoint("not a url"))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestNewConfig_RejectsBlankAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		_, err := cdp.NewConfig(key)
		require.ErrorIs(t, err, types.ErrInvalidArgument)
		assert.Equal(t, "apiKey cannot be empty", err.Error())
	}
}

func TestNewConfig_DualWrite(t *testing.T) {
	t.Run("requires customer.io settings", func(t *testing.T) {
		_, err := cdp.NewConfig("key", cdp.WithDualWrite(true))
		require.ErrorIs(t, err, types.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "customerIo configuration is required")
	})

	t.Run("requires site id and api key", func(t *testing.T) {
		_, err := cdp.NewConfig("key",
			cdp.WithDualWrite(true),
			cdp.WithCustomerIO(cdp.CustomerIOSettings{SiteID: "site"}),
		)
		require.ErrorIs(t, err, types.ErrInvalidArgument)
		assert.Equal(t, "customerIo siteId and apiKey are required", err.Error())
	})

	t.Run("region defaults to us", func(t *testing.T) {
		cfg, err := cdp.NewConfig("key",
			cdp.WithDualWrite(true),
			cdp.WithCustomerIO(cdp.CustomerIOSettings{SiteID: "site", APIKey: "secret"}),
		)
		require.NoError(t, err)
		settings, ok := cfg.CustomerIO()
		require.True(t, ok)
		assert.Equal(t, "us", settings.Region)
		assert.True(t, cfg.DualWrite())
	})

	t.Run("injected provider needs no credentials", func(t *testing.T) {
		_, err := cdp.NewConfig("key",
			cdp.WithDualWrite(true),
			cdp.WithSecondaryProvider(cdptest.NewSecondary(nil)),
		)
		require.NoError(t, err)
	})

	t.Run("settings ignored when dual-write is off", func(t *testing.T) {
		_, err := cdp.NewConfig("key", cdp.WithCustomerIO(cdp.CustomerIOSettings{}))
		require.NoError(t, err)
	})
}

func TestNewConfig_NegativeRateLimit(t *testing.T) {
	_, err := cdp.NewConfig("key", cdp.WithRateLimit(-1))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
