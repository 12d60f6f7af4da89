package shared

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	c := LoadFrom(viper.New())

	assert.Equal(t, "prod", c.AppEnv)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 400, c.PhotoWidth)
	assert.Equal(t, 10, c.PlacesRPS)
	assert.Equal(t, "sqlite", c.JournalDriver)
	assert.Equal(t, 15*time.Minute, c.CacheTTL())
	assert.Equal(t, 30*time.Minute, c.SessionTTL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("GOOGLE_API_KEY", "k")
	t.Setenv("PLACES_RPS", "3")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("JOURNAL_DRIVER", "mysql")

	c := Load()

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, "k", c.GoogleKey)
	assert.Equal(t, 3, c.PlacesRPS)
	assert.Equal(t, time.Minute, c.CacheTTL())
	assert.Equal(t, "mysql", c.JournalDriver)
}

func TestLoad_UnknownJournalDriver(t *testing.T) {
	t.Setenv("JOURNAL_DRIVER", "postgres")
	assert.Equal(t, "none", Load().JournalDriver)
}
