package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		EndpointConfigs: []EndpointConfig{
			{Path: "/generate/cv", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
			{Path: "/health", Method: "GET", Limit: 0},
		},
	}
}

func TestAllow_WithinBurst(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/generate/cv", "POST")
	require.True(t, allowed)
	assert.Equal(t, 2, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/generate/cv", "POST")
	assert.True(t, allowed)
}

func TestAllow_ExceedsBurst(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/generate/cv", "POST")
	l.Allow("1.2.3.4", "/generate/cv", "POST")

	allowed, info := l.Allow("1.2.3.4", "/generate/cv", "POST")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestAllow_ClientsIsolated(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/generate/cv", "POST")
	l.Allow("1.2.3.4", "/generate/cv", "POST")

	allowed, _ := l.Allow("5.6.7.8", "/generate/cv", "POST")
	assert.True(t, allowed)
}

func TestAllow_UnlimitedEndpoint(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestAllow_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/generate/cv", "POST")
		require.True(t, allowed)
	}
}

func TestAllow_Whitelist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["9.9.9.9"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("9.9.9.9", "/generate/cv", "POST")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint_PrefixAndExact(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/runs/", Method: "GET", Limit: 10},
		{Path: "/generate/cv", Method: "POST", Limit: 2},
	}

	assert.NotNil(t, matchEndpoint("/runs/abc123", "GET", configs))
	assert.NotNil(t, matchEndpoint("/generate/cv", "POST", configs))
	assert.Nil(t, matchEndpoint("/generate/cv", "GET", configs))
	assert.Nil(t, matchEndpoint("/generate/cover-letter", "POST", configs))
}

func TestDefaultConfigs_StrictTierCoversAllGenerationEndpoints(t *testing.T) {
	configs := defaultEndpointConfigs()

	for _, path := range []string{"/generate/cv", "/generate/cover-letter", "/generate/stream"} {
		cfg := matchEndpoint(path, "POST", configs)
		require.NotNil(t, cfg, path)
		assert.Equal(t, 20, cfg.Limit, path)
		assert.Equal(t, time.Hour, cfg.Window, path)
		assert.Equal(t, 3, cfg.Burst, path)
	}
}

func TestAllow_StreamSharesStrictTier(t *testing.T) {
	cfg := &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		Whitelist:       map[string]bool{},
		EndpointConfigs: defaultEndpointConfigs(),
	}
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/generate/stream", "POST")
		require.True(t, allowed)
	}

	allowed, info := l.Allow("1.2.3.4", "/generate/stream", "POST")
	assert.False(t, allowed, "streaming burns the same model budget as the REST endpoints")
	assert.Equal(t, 20, info.Limit)
}

func TestLoadConfig_DisabledViaEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}
