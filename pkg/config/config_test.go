package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 50, cfg.Storage.SeedStudents)
	assert.Equal(t, 12, cfg.Roster.PageSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_DRIVER", " Postgres ")
	v.Set("ROSTER_PAGE_SIZE", -3)
	v.Set("ROSTER_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 12, cfg.Roster.PageSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestFromViperUnknownDriverFallsBackToMemory(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_DRIVER", "mongo")

	assert.Equal(t, StorageMemory, fromViper(v).Storage.Driver)
}

func TestFromViperSQLite(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_DRIVER", "SQLite")
	v.Set("SQLITE_PATH", "/tmp/roster.db")

	cfg := fromViper(v)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/roster.db", cfg.Storage.SQLitePath)
}
