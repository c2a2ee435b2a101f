package db

import (
	"context"
	"fmt"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/jpillora/backoff"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects to Postgres, retrying with backoff while the database comes
// up, and migrates the bot's tables.
func Open(ctx context.Context, dsn string, log log15.Logger) (*gorm.DB, error) {
	b := &backoff.Backoff{Min: 500 * time.Millisecond, Max: 10 * time.Second, Factor: 2, Jitter: true}
	return connect(ctx, b, connectAttempts, func() (*gorm.DB, error) {
		conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return nil, err
		}
		if err := Migrate(conn); err != nil {
			return nil, err
		}
		return conn, nil
	}, log)
}

// connect calls dial up to attempts times, sleeping between tries but not
// after the last one.
func connect(ctx context.Context, b *backoff.Backoff, attempts int, dial func() (*gorm.DB, error), log log15.Logger) (*gorm.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dial()
		if err == nil {
			log.Info("connected to database")
			return conn, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		wait := b.Duration()
		log.Warn("database not ready", "attempt", attempt, "retry_in", wait, "err", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("Open: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("Open: failed to connect after %d attempts: %w", attempts, lastErr)
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&SubmissionClaim{}, &PromptDelivery{}); err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}
