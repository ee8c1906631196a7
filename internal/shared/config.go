package shared

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr    string        `env:"METRICS_ADDR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Sessions are shared with the login service. Empty DSN keeps them in memory.
	MySQLDSN               string        `env:"MYSQL_DSN"`
	SessionLifetime        time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	SessionSecret          string        `env:"SESSION_SECRET"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	TrustedOrigins         []string      `env:"CSRF_TRUSTED_ORIGINS" envSeparator:","`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	HotelAPIBase    string        `env:"HOTEL_API_BASE_URL" envDefault:"http://localhost:5000"`
	HotelAPIKey     string        `env:"HOTEL_API_KEY"`
	HotelAPIRPS     int           `env:"HOTEL_API_RPS" envDefault:"5"`
	HotelAPITimeout time.Duration `env:"HOTEL_API_TIMEOUT" envDefault:"20s"`

	DraftTTL      time.Duration `env:"DRAFT_TTL" envDefault:"1h"`
	SubmitLockTTL time.Duration `env:"SUBMIT_LOCK_TTL" envDefault:"30s"`
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	if c.HotelAPIKey == "" {
		log.Warn().Msg("HOTEL_API_KEY is empty")
	}
	if c.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is empty")
	}
	return c, nil
}
