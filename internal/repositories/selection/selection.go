package selection

import (
	"context"
	"errors"

	"github.com/orgball2608/tweet-radar/internal/domain"
)

var ErrNotFound = errors.New("selection not found")

//go:generate go run go.uber.org/mock/mockgen -source=selection.go -destination=mocks/mock.go -package=mocks
type Repository interface {
	// Add records a tweet as selected for script generation. Returns false
	// without error when the tweet is already selected.
	Add(ctx context.Context, sel domain.Selection) (bool, error)

	// Remove deletes the selection for a tweet id, reporting whether one existed
	Remove(ctx context.Context, tweetID string) (bool, error)

	// Clear removes all selections and returns how many were deleted
	Clear(ctx context.Context) (int64, error)

	// List returns all selections, newest first
	List(ctx context.Context) ([]*domain.Selection, error)
}
