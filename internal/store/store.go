package store

import (
	"context"
	"fmt"

	"github.com/amishk599/jobmerge/internal/model"
)

// Store is a persisted job collaborator that can also be seeded and
// health-checked.
type Store interface {
	model.JobStore
	Insert(ctx context.Context, jobs []model.Job) error
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by driver: "sqlite", "postgres" or "none".
func Open(ctx context.Context, driver, path, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	case "none":
		return NewNopStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
