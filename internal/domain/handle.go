package domain

import (
	"strings"
	"time"
)

// Handle is a tracked author identity. Handles are reactivated rather than
// deleted when re-registered.
type Handle struct {
	ID        int
	Handle    string
	Active    bool
	CreatedAt time.Time
}

// HandleStats summarizes one tracked handle's recent activity.
type HandleStats struct {
	Handle        string  `json:"handle"`
	TweetCount    int     `json:"tweetCount"`
	AvgEngagement float64 `json:"avgEngagement"`
}

// NormalizeHandle trims whitespace, strips a leading @ and lowercases.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
