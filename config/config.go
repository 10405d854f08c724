package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Logger struct {
	IsProd bool `default:"false" envconfig:"IS_PROD"`
}

type API struct {
	BaseURL string        `default:"http://localhost:8080" envconfig:"BASE_URL"`
	Timeout time.Duration `default:"10s" envconfig:"TIMEOUT"`
}

type Push struct {
	URL              string        `default:"ws://localhost:8080/ws" envconfig:"URL"`
	HandshakeTimeout time.Duration `default:"10s" envconfig:"HANDSHAKE_TIMEOUT"`
}

type Geo struct {
	PositionURL  string        `default:"http://localhost:8080/api/geo/position" envconfig:"POSITION_URL"`
	GeocodeURL   string        `default:"http://localhost:8080/api/geo/reverse" envconfig:"GEOCODE_URL"`
	Timeout      time.Duration `default:"10s" envconfig:"TIMEOUT"`
	MaxCacheAge  time.Duration `default:"1m" envconfig:"MAX_CACHE_AGE"`
	HighAccuracy bool          `default:"false" envconfig:"HIGH_ACCURACY"`
}

type Fetch struct {
	DefaultLimit int           `default:"20" envconfig:"DEFAULT_LIMIT"`
	MaxLimit     int           `default:"100" envconfig:"MAX_LIMIT"`
	SettleDelay  time.Duration `default:"1500ms" envconfig:"SETTLE_DELAY"`
}

type Tracing struct {
	Enabled     bool    `default:"false" envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"storefront-client" envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"localhost:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1" envconfig:"OTEL_SAMPLE_RATIO"`
}

// DevServer — настройки локального сервера-имитатора маркетплейса.
type DevServer struct {
	Addr      string        `default:":8080" envconfig:"ADDR"`
	GinMode   string        `default:"debug" envconfig:"GIN_MODE"`
	JWTSecret string        `default:"dev-secret" envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `default:"24h" envconfig:"TOKEN_TTL"`
}

// Demo — учётные данные автологина консольной оболочки; пустой email
// оставляет сессию анонимной.
type Demo struct {
	Email    string `default:"" envconfig:"EMAIL"`
	Password string `default:"" envconfig:"PASSWORD"`
}

type Config struct {
	Logger    Logger
	API       API
	Push      Push
	Geo       Geo
	Fetch     Fetch
	Tracing   Tracing
	DevServer DevServer
	Demo      Demo
}

// Load — конфигурация с префиксом STOREFRONT.
func Load() (Config, error) { return LoadWithPrefix("STOREFRONT") }

// LoadWithPrefix — то же с произвольным префиксом (нужно тестам,
// чтобы не задевать реальное окружение).
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
