// Package ranker holds the pure ranking passes over stored tweets: outlier
// scoring against each author's own baseline and the raw engagement matrix.
package ranker

import (
	"sort"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/pkg/stats"
)

const (
	Window24h = "24h"
	Window7d  = "7d"
	Window30d = "30d"
)

// ResolveWindow maps a window key to its duration. Unrecognized keys fall
// back to 24h.
func ResolveWindow(key string) time.Duration {
	switch key {
	case Window7d:
		return 7 * 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// RankedTweet is a tweet annotated with its author's baseline and the
// resulting outlier score.
type RankedTweet struct {
	Tweet          domain.Tweet
	Engagement     int
	BaselineMedian float64
	OutlierScore   float64
}

// Baseline is the median engagement of a post set, floored at 1.
func Baseline(engagements []float64) float64 {
	baseline := stats.Median(engagements)
	if baseline < 1 {
		return 1
	}
	return baseline
}

// RankOutliers scores every tweet against its author's baseline over the
// given set and returns the top limit tweets by outlier score, plus the
// total candidate count. Ties break on raw engagement, descending; beyond
// that the incoming order is preserved.
func RankOutliers(tweets []domain.Tweet, limit int) ([]RankedTweet, int) {
	byHandle := groupByHandle(tweets)

	scored := make([]RankedTweet, 0, len(tweets))
	for _, group := range byHandle {
		engagements := make([]float64, 0, len(group))
		for _, t := range group {
			engagements = append(engagements, float64(t.EngagementScore()))
		}
		baseline := Baseline(engagements)

		for _, t := range group {
			engagement := t.EngagementScore()
			scored = append(scored, RankedTweet{
				Tweet:          t,
				Engagement:     engagement,
				BaselineMedian: baseline,
				OutlierScore:   float64(engagement) / baseline,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].OutlierScore != scored[j].OutlierScore {
			return scored[i].OutlierScore > scored[j].OutlierScore
		}
		return scored[i].Engagement > scored[j].Engagement
	})

	total := len(scored)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, total
}

// RankByEngagement sorts tweets by raw engagement, ties broken by likes,
// and returns the top limit plus the total candidate count.
func RankByEngagement(tweets []domain.Tweet, limit int) ([]RankedTweet, int) {
	scored := make([]RankedTweet, 0, len(tweets))
	for _, t := range tweets {
		scored = append(scored, RankedTweet{
			Tweet:      t,
			Engagement: t.EngagementScore(),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Engagement != scored[j].Engagement {
			return scored[i].Engagement > scored[j].Engagement
		}
		return scored[i].Tweet.LikeCount > scored[j].Tweet.LikeCount
	})

	total := len(scored)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, total
}

// groupByHandle partitions tweets by author, preserving the order in which
// each handle first appears.
func groupByHandle(tweets []domain.Tweet) [][]domain.Tweet {
	index := make(map[string]int)
	var groups [][]domain.Tweet

	for _, t := range tweets {
		i, ok := index[t.Handle]
		if !ok {
			i = len(groups)
			index[t.Handle] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	return groups
}
