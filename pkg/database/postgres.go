package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/strack-api/pkg/config"
)

// ApplicationName tags roster API sessions in pg_stat_activity.
const ApplicationName = "strack-api"

// DSN renders the lib/pq connection string for cfg. Values are quoted so
// passwords with spaces or quotes survive.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s connect_timeout=5",
		quoteDSN(cfg.Host),
		cfg.Port,
		quoteDSN(cfg.User),
		quoteDSN(cfg.Password),
		quoteDSN(cfg.Name),
		quoteDSN(cfg.SSLMode),
		ApplicationName,
	)
}

func quoteDSN(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
