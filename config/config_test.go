package config_test

import (
	"testing"
	"time"

	cfg "github.com/Gunvolt24/wb_storefront/config"
)

// TestLoadWithPrefix_Defaults — проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("SF_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// API
	if c.API.BaseURL != "http://localhost:8080" {
		t.Fatalf("API.BaseURL: want http://localhost:8080, got %q", c.API.BaseURL)
	}
	if c.API.Timeout != 10*time.Second {
		t.Fatalf("API.Timeout: want 10s, got %v", c.API.Timeout)
	}

	// Push
	if c.Push.URL != "ws://localhost:8080/ws" || c.Push.HandshakeTimeout != 10*time.Second {
		t.Fatalf("Push defaults wrong: %+v", c.Push)
	}

	// Geo
	if c.Geo.Timeout != 10*time.Second || c.Geo.MaxCacheAge != time.Minute || c.Geo.HighAccuracy {
		t.Fatalf("Geo defaults wrong: %+v", c.Geo)
	}
	if c.Geo.PositionURL == "" || c.Geo.GeocodeURL == "" {
		t.Fatalf("Geo URLs should have defaults, got %+v", c.Geo)
	}

	// Fetch
	if c.Fetch.DefaultLimit != 20 || c.Fetch.MaxLimit != 100 {
		t.Fatalf("Fetch limits wrong: %+v", c.Fetch)
	}
	if c.Fetch.SettleDelay != 1500*time.Millisecond {
		t.Fatalf("Fetch.SettleDelay: want 1500ms, got %v", c.Fetch.SettleDelay)
	}

	// Tracing
	if c.Tracing.Enabled {
		t.Fatalf("Tracing.Enabled: want false, got true")
	}
	if c.Tracing.ServiceName != "storefront-client" || c.Tracing.Endpoint != "localhost:4318" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// DevServer
	if c.DevServer.Addr != ":8080" || c.DevServer.GinMode != "debug" || c.DevServer.TokenTTL != 24*time.Hour {
		t.Fatalf("DevServer defaults wrong: %+v", c.DevServer)
	}

	// Logger
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}

	// Demo — без настроек сессия анонимная.
	if c.Demo.Email != "" || c.Demo.Password != "" {
		t.Fatalf("Demo defaults wrong: %+v", c.Demo)
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "SF_TEST_OVR"

	t.Setenv(p+"_LOGGER_IS_PROD", "true")
	t.Setenv(p+"_API_BASE_URL", "https://market.example.com")
	t.Setenv(p+"_API_TIMEOUT", "3s")
	t.Setenv(p+"_PUSH_URL", "wss://market.example.com/ws")
	t.Setenv(p+"_PUSH_HANDSHAKE_TIMEOUT", "2s")
	t.Setenv(p+"_GEO_TIMEOUT", "4s")
	t.Setenv(p+"_GEO_MAX_CACHE_AGE", "30s")
	t.Setenv(p+"_GEO_HIGH_ACCURACY", "true")
	t.Setenv(p+"_FETCH_DEFAULT_LIMIT", "12")
	t.Setenv(p+"_FETCH_MAX_LIMIT", "50")
	t.Setenv(p+"_FETCH_SETTLE_DELAY", "250ms")
	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SERVICE_NAME", "svc")
	t.Setenv(p+"_TRACING_OTEL_ENDPOINT", "collector:4318")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv(p+"_DEVSERVER_ADDR", ":9091")
	t.Setenv(p+"_DEVSERVER_GIN_MODE", "release")
	t.Setenv(p+"_DEVSERVER_JWT_SECRET", "s3cr3t")
	t.Setenv(p+"_DEVSERVER_TOKEN_TTL", "1h")
	t.Setenv(p+"_DEMO_EMAIL", "demo@wb.local")
	t.Setenv(p+"_DEMO_PASSWORD", "demo")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if !c.Logger.IsProd {
		t.Fatalf("Logger.IsProd override wrong: %+v", c.Logger)
	}
	if c.API.BaseURL != "https://market.example.com" || c.API.Timeout != 3*time.Second {
		t.Fatalf("API overrides wrong: %+v", c.API)
	}
	if c.Push.URL != "wss://market.example.com/ws" || c.Push.HandshakeTimeout != 2*time.Second {
		t.Fatalf("Push overrides wrong: %+v", c.Push)
	}
	if c.Geo.Timeout != 4*time.Second || c.Geo.MaxCacheAge != 30*time.Second || !c.Geo.HighAccuracy {
		t.Fatalf("Geo overrides wrong: %+v", c.Geo)
	}
	if c.Fetch.DefaultLimit != 12 || c.Fetch.MaxLimit != 50 || c.Fetch.SettleDelay != 250*time.Millisecond {
		t.Fatalf("Fetch overrides wrong: %+v", c.Fetch)
	}
	if !c.Tracing.Enabled || c.Tracing.ServiceName != "svc" || c.Tracing.Endpoint != "collector:4318" || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if c.DevServer.Addr != ":9091" || c.DevServer.GinMode != "release" || c.DevServer.JWTSecret != "s3cr3t" || c.DevServer.TokenTTL != time.Hour {
		t.Fatalf("DevServer overrides wrong: %+v", c.DevServer)
	}
	if c.Demo.Email != "demo@wb.local" || c.Demo.Password != "demo" {
		t.Fatalf("Demo overrides wrong: %+v", c.Demo)
	}
}

// Тоже меняем окружение — но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "SF_TEST_BAD"
	t.Setenv(p+"_API_TIMEOUT", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
