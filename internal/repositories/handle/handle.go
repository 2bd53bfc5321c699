package handle

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
)

var ErrNotFound = errors.New("handle not found")

//go:generate go run go.uber.org/mock/mockgen -source=handle.go -destination=mocks/mock.go -package=mocks
type Repository interface {
	// Upsert registers handles, reactivating any that already exist.
	// Input handles are normalized before storage.
	Upsert(ctx context.Context, handles []string) (int, error)

	// ListActive returns all active handles
	ListActive(ctx context.Context) ([]string, error)

	// ListWithStats returns per-handle tweet counts and average engagement
	// for tweets created at or after since, most active first.
	ListWithStats(ctx context.Context, since time.Time) ([]domain.HandleStats, error)
}
