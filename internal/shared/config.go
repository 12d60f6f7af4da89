package shared

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`

	SpotsBase   string `mapstructure:"SPOTS_BASE_URL"`
	PlacesBase  string `mapstructure:"PLACES_BASE_URL"`
	GeocodeBase string `mapstructure:"GEOCODE_BASE_URL"`
	GoogleKey   string `mapstructure:"GOOGLE_API_KEY"`
	PlacesRPS   int    `mapstructure:"PLACES_RPS"`
	SpotsRPS    int    `mapstructure:"SPOTS_RPS"`
	PhotoWidth  int    `mapstructure:"PHOTO_MAX_WIDTH"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisPass string `mapstructure:"REDIS_PASSWORD"`
	RedisDB   int    `mapstructure:"REDIS_DB"`

	CacheTTLSeconds   int `mapstructure:"CACHE_TTL_SECONDS"`
	SessionTTLSeconds int `mapstructure:"SESSION_TTL_SECONDS"`

	JournalDriver string `mapstructure:"JOURNAL_DRIVER"`
	MySQLDSN      string `mapstructure:"MYSQL_DSN"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	UploadMaxWidth  int `mapstructure:"UPLOAD_MAX_WIDTH"`
	PrefetchWorkers int `mapstructure:"PREFETCH_WORKERS"`
}

func (c Config) CacheTTL() time.Duration   { return time.Duration(c.CacheTTLSeconds) * time.Second }
func (c Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLSeconds) * time.Second }

var defaults = map[string]any{
	"APP_ENV":             "prod",
	"HTTP_ADDR":           ":8080",
	"METRICS_ADDR":        ":9100",
	"SPOTS_BASE_URL":      "http://localhost:8081/api",
	"PLACES_BASE_URL":     "https://maps.googleapis.com/maps/api/place",
	"GEOCODE_BASE_URL":    "https://maps.googleapis.com/maps/api/geocode",
	"GOOGLE_API_KEY":      "",
	"PLACES_RPS":          10,
	"SPOTS_RPS":           20,
	"PHOTO_MAX_WIDTH":     400,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"CACHE_TTL_SECONDS":   900,
	"SESSION_TTL_SECONDS": 1800,
	"JOURNAL_DRIVER":      "sqlite",
	"MYSQL_DSN":           "root:root@tcp(localhost:3306)/spots?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
	"SQLITE_PATH":         "spots_journal.db",
	"UPLOAD_MAX_WIDTH":    1600,
	"PREFETCH_WORKERS":    8,
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	return LoadFrom(viper.New())
}

// LoadFrom is Load against a caller supplied viper instance.
func LoadFrom(v *viper.Viper) Config {
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Error().Err(err).Msg("config unmarshal failed, using defaults")
	}

	switch c.JournalDriver {
	case "mysql", "sqlite", "none":
	default:
		log.Warn().Str("driver", c.JournalDriver).Msg("unknown JOURNAL_DRIVER, journal disabled")
		c.JournalDriver = "none"
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY is empty")
	}
	return c
}
