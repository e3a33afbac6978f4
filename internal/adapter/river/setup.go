package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Setup migrates River's schema and builds a client with the event
// dispatch worker registered. The caller owns the client lifecycle:
// Start() to begin processing, Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB) (*Client, error) {
	driver := riversqlite.New(db)

	if err := migrate(ctx, driver); err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &EventWorker{})

	// A single worker keeps delivery in insertion order, which is what
	// gives subscribers per-aggregate event ordering.
	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}

// migrate creates river_job and friends. River's tables live beside the
// app's goose-managed ones but are versioned separately.
func migrate(ctx context.Context, driver *riversqlite.Driver) error {
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("running river migrations: %w", err)
	}
	return nil
}
