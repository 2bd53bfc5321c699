package domain

import "time"

// Selection marks a tweet as queued for downstream script generation.
// Unique per tweet; created once, removed individually or in bulk.
type Selection struct {
	ID        int
	TweetID   string
	Handle    string
	Reasoning string
	Scope     string
	AddedAt   time.Time
}
