package ranker

import (
	"testing"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/stretchr/testify/require"
)

func tweetWith(handle string, likes, retweets, replies int) domain.Tweet {
	return domain.Tweet{
		TweetID:      handle + "-t",
		Handle:       handle,
		LikeCount:    likes,
		RetweetCount: retweets,
		ReplyCount:   replies,
	}
}

func TestResolveWindow(t *testing.T) {
	require.Equal(t, 24*time.Hour, ResolveWindow("24h"))
	require.Equal(t, 7*24*time.Hour, ResolveWindow("7d"))
	require.Equal(t, 30*24*time.Hour, ResolveWindow("30d"))
	require.Equal(t, 24*time.Hour, ResolveWindow(""))
	require.Equal(t, 24*time.Hour, ResolveWindow("90d"))
}

func TestBaseline(t *testing.T) {
	require.Equal(t, 1.0, Baseline(nil))
	require.Equal(t, 1.0, Baseline([]float64{0, 0, 0}))
	require.Equal(t, 80.5, Baseline([]float64{1, 160}))
}

func TestRankOutliersSingleAuthor(t *testing.T) {
	tweets := []domain.Tweet{
		tweetWith("alice", 1, 0, 0),
		tweetWith("alice", 100, 50, 10),
	}
	tweets[0].TweetID = "low"
	tweets[1].TweetID = "high"

	ranked, total := RankOutliers(tweets, 20)
	require.Equal(t, 2, total)
	require.Len(t, ranked, 2)

	// engagements [1, 160], median 80.5, baseline 80.5
	require.Equal(t, "high", ranked[0].Tweet.TweetID)
	require.Equal(t, 80.5, ranked[0].BaselineMedian)
	require.InDelta(t, 160.0/80.5, ranked[0].OutlierScore, 1e-9)
	require.InDelta(t, 1.0/80.5, ranked[1].OutlierScore, 1e-9)
}

func TestRankOutliersAllZeroEngagement(t *testing.T) {
	tweets := []domain.Tweet{
		tweetWith("bob", 0, 0, 0),
	}

	ranked, total := RankOutliers(tweets, 20)
	require.Equal(t, 1, total)
	require.Equal(t, 1.0, ranked[0].BaselineMedian)
	require.Equal(t, 0.0, ranked[0].OutlierScore)
}

func TestRankOutliersTieBreaksOnEngagement(t *testing.T) {
	// Two authors whose only tweet scores exactly 1.0 against their own
	// baseline; the higher raw engagement must come first.
	tweets := []domain.Tweet{
		tweetWith("small", 5, 0, 0),
		tweetWith("big", 500, 0, 0),
	}

	ranked, _ := RankOutliers(tweets, 20)
	require.Equal(t, "big", ranked[0].Tweet.Handle)
	require.Equal(t, "small", ranked[1].Tweet.Handle)
}

func TestRankOutliersLimit(t *testing.T) {
	var tweets []domain.Tweet
	for i := 0; i < 30; i++ {
		tweets = append(tweets, tweetWith("carol", i, 0, 0))
	}

	ranked, total := RankOutliers(tweets, 5)
	require.Equal(t, 30, total)
	require.Len(t, ranked, 5)
}

func TestRankByEngagement(t *testing.T) {
	a := tweetWith("a", 10, 0, 0)  // engagement 10
	b := tweetWith("b", 5, 5, 0)   // engagement 10, fewer likes
	c := tweetWith("c", 50, 10, 1) // engagement 61

	ranked, total := RankByEngagement([]domain.Tweet{a, b, c}, 20)
	require.Equal(t, 3, total)
	require.Equal(t, "c", ranked[0].Tweet.Handle)
	require.Equal(t, "a", ranked[1].Tweet.Handle)
	require.Equal(t, "b", ranked[2].Tweet.Handle)
}
