package tweet

import (
	"context"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
)

// HistoryFilter carries the predicates the store can push down. Text,
// threshold and source predicates are applied by the history engine after
// fetch because they are not index-backed.
type HistoryFilter struct {
	Handles []string
	Since   *time.Time
	Until   *time.Time
}

//go:generate go run go.uber.org/mock/mockgen -source=tweet.go -destination=mocks/mock.go -package=mocks
type Repository interface {
	// Upsert stores tweets keyed by tweet_id. Re-fetched tweets update the
	// existing row instead of duplicating it.
	Upsert(ctx context.Context, tweets []domain.Tweet) (inserted, updated int, err error)

	// GetByWindow returns tweets for the given handles created at or after since.
	// An empty handle list means all handles.
	GetByWindow(ctx context.Context, handles []string, since time.Time) ([]domain.Tweet, error)

	// GetHistory returns tweets matching the pushdown filter, newest first.
	GetHistory(ctx context.Context, filter HistoryFilter) ([]domain.Tweet, error)
}
