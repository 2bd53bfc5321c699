package twitter

import (
	"context"

	"github.com/orgball2608/tweet-radar/internal/domain"
)

// UserLookup is the result of resolving a handle to a platform user id.
type UserLookup struct {
	UserID   string
	Username string
	Name     string
}

//go:generate go run go.uber.org/mock/mockgen -source=twitter.go -destination=mocks/mock.go -package=mocks
type Client interface {
	// ResolveUserID resolves a handle to the platform's internal user id
	ResolveUserID(ctx context.Context, handle string) (UserLookup, error)

	// GetUserTweets returns up to limit recent tweets for a resolved user id
	GetUserTweets(ctx context.Context, userID string, limit int) ([]domain.Tweet, error)

	// GetFeedTimeline returns up to limit recent tweets from the generic feed
	GetFeedTimeline(ctx context.Context, limit int) ([]domain.Tweet, error)

	// Search returns up to limit tweets matching the query
	Search(ctx context.Context, query string, limit int) ([]domain.Tweet, error)
}
