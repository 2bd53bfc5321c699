package domain

import "time"

// Tweet is a single stored social post together with its engagement counters.
type Tweet struct {
	ID             int
	TweetID        string // Post ID from the source platform
	Handle         string // Normalized author handle (lowercase, no @)
	CreatedAt      time.Time
	Text           string
	AuthorName     string
	AuthorUsername string
	ReplyCount     int
	RetweetCount   int
	LikeCount      int
	Engagement     int // Stored redundantly, always recomputable
	URL            *string
	Sources        []string // Optional origin tags, e.g. "feed"
}

// EngagementScore recomputes engagement from the raw counters.
func (t *Tweet) EngagementScore() int {
	return t.ReplyCount + t.RetweetCount + t.LikeCount
}
