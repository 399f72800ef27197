package timeline

import (
	"context"

	"github.com/deemkeen/statusbridge/db"
)

const (
	DefaultLimit = 20
	MaxLimit     = 40
)

// ClampLimit maps a requested page size onto 1..MaxLimit. Zero or less means DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ResolveCursor turns a max_id into the cdate entries must be newer than. Without a
// max_id every entry qualifies.
func ResolveCursor(ctx context.Context, store Store, maxID string) (string, error) {
	if maxID == "" {
		return db.BeginningOfTime, nil
	}
	return store.ReadOutboxCursor(ctx, maxID)
}
