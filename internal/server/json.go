package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/ranker"
	"github.com/orgball2608/tweet-radar/pkg/stats"
)

// tweetDTO is the wire shape of a tweet.
type tweetDTO struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorName     string    `json:"authorName"`
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      time.Time `json:"createdAt"`
	ReplyCount     int       `json:"replyCount"`
	RetweetCount   int       `json:"retweetCount"`
	LikeCount      int       `json:"likeCount"`
	URL            *string   `json:"url"`
}

// rankedTweetDTO extends tweetDTO with the baseline annotations. The fields
// are always emitted; an all-zero author legitimately scores 0 against a
// baseline of 1.
type rankedTweetDTO struct {
	tweetDTO
	Engagement     int     `json:"engagement"`
	BaselineMedian float64 `json:"baselineMedian"`
	OutlierScore   float64 `json:"outlierScore"`
}

// engagementTweetDTO is the matrix row shape: engagement only, no baseline.
type engagementTweetDTO struct {
	tweetDTO
	Engagement int `json:"engagement"`
}

func mapTweet(t domain.Tweet) tweetDTO {
	return tweetDTO{
		ID:             t.TweetID,
		Text:           t.Text,
		AuthorName:     t.AuthorName,
		AuthorUsername: t.AuthorUsername,
		CreatedAt:      t.CreatedAt,
		ReplyCount:     t.ReplyCount,
		RetweetCount:   t.RetweetCount,
		LikeCount:      t.LikeCount,
		URL:            t.URL,
	}
}

func mapTweets(tweets []domain.Tweet) []tweetDTO {
	out := make([]tweetDTO, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, mapTweet(t))
	}
	return out
}

func mapRankedTweets(ranked []ranker.RankedTweet) []rankedTweetDTO {
	out := make([]rankedTweetDTO, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, rankedTweetDTO{
			tweetDTO:       mapTweet(r.Tweet),
			Engagement:     r.Engagement,
			BaselineMedian: r.BaselineMedian,
			OutlierScore:   r.OutlierScore,
		})
	}
	return out
}

func mapEngagementTweets(ranked []ranker.RankedTweet) []engagementTweetDTO {
	out := make([]engagementTweetDTO, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, engagementTweetDTO{
			tweetDTO:   mapTweet(r.Tweet),
			Engagement: r.Engagement,
		})
	}
	return out
}

// decodeBody parses the request body into dst. An empty body is treated as
// an empty object; malformed JSON is a validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// count clamps an optional requested result count into [1, 100].
func count(raw *float64, fallback int) int {
	if raw == nil {
		return fallback
	}
	return stats.Count(*raw, fallback)
}

func normalizeHandles(handles []string) []string {
	cleaned := make([]string, 0, len(handles))
	for _, h := range handles {
		if normalized := domain.NormalizeHandle(h); normalized != "" {
			cleaned = append(cleaned, normalized)
		}
	}
	return cleaned
}

// parseTime accepts RFC3339 or epoch milliseconds; anything else means no
// constraint.
func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if ms := stats.ClampedNumber(raw, -1); ms >= 0 {
		t := time.UnixMilli(int64(ms))
		return &t
	}
	return nil
}
