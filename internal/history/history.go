// Package history serves the browsing queries over the accumulated tweet
// store: arbitrary filter combinations, per-author baselines scoped to the
// filtered set, multi-key sorting and pagination.
package history

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/ranker"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
)

const (
	SortByCreatedAt  = "createdAt"
	SortByLikes      = "likes"
	SortByRetweets   = "retweets"
	SortByReplies    = "replies"
	SortByEngagement = "engagement"
	SortByOutlier    = "outlier"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query is one history request. Zero values mean "no constraint"; Page and
// PageSize are clamped, never rejected.
type Query struct {
	Handle        string
	Text          string
	Start         *time.Time
	End           *time.Time
	Source        string
	MinLikes      *int
	MinRetweets   *int
	MinReplies    *int
	MinEngagement *int
	SortBy        string
	SortDir       string
	Page          int
	PageSize      int
}

// Page is one page of enriched history results.
type Page struct {
	Tweets     []ranker.RankedTweet
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

type Opts struct {
	fx.In

	TweetRepo tweet.Repository
	Logger    logger.Logger
}

type Engine struct {
	tweetRepo tweet.Repository
	logger    logger.Logger
}

func New(opts Opts) *Engine {
	return &Engine{
		tweetRepo: opts.TweetRepo,
		logger:    opts.Logger.WithComponent("History"),
	}
}

// Query fetches candidates with the index-backed predicates pushed down,
// applies the remaining filters, attaches baselines computed over the
// filtered set only, then sorts and paginates.
func (e *Engine) Query(ctx context.Context, q Query) (Page, error) {
	pageNumber := q.Page
	if pageNumber < 1 {
		pageNumber = 1
	}
	size := q.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	filter := tweet.HistoryFilter{Since: q.Start, Until: q.End}
	if q.Handle != "" {
		filter.Handles = []string{domain.NormalizeHandle(q.Handle)}
	}

	rows, err := e.tweetRepo.GetHistory(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	filtered := applyFilters(rows, q)
	enriched := enrich(filtered)
	sortRows(enriched, q.SortBy, q.SortDir)

	total := len(enriched)
	totalPages := (total + size - 1) / size
	offset := (pageNumber - 1) * size

	var paged []ranker.RankedTweet
	if offset < total {
		end := offset + size
		if end > total {
			end = total
		}
		paged = enriched[offset:end]
	}

	return Page{
		Tweets:     paged,
		Total:      total,
		Page:       pageNumber,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

// applyFilters evaluates the predicates the store cannot index: text
// substring, count thresholds and source tags.
func applyFilters(rows []domain.Tweet, q Query) []domain.Tweet {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	filtered := rows[:0:0]
	for _, row := range rows {
		if text != "" && !strings.Contains(strings.ToLower(row.Text), text) {
			continue
		}
		if q.Source != "" && !slices.Contains(row.Sources, q.Source) {
			continue
		}
		if q.MinLikes != nil && row.LikeCount < *q.MinLikes {
			continue
		}
		if q.MinRetweets != nil && row.RetweetCount < *q.MinRetweets {
			continue
		}
		if q.MinReplies != nil && row.ReplyCount < *q.MinReplies {
			continue
		}
		if q.MinEngagement != nil && rowEngagement(row) < *q.MinEngagement {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// enrich attaches per-author baselines computed over the filtered rows so
// the baseline reflects only data the caller can see.
func enrich(rows []domain.Tweet) []ranker.RankedTweet {
	engagementsByHandle := make(map[string][]float64)
	for _, row := range rows {
		engagementsByHandle[row.Handle] = append(engagementsByHandle[row.Handle], float64(rowEngagement(row)))
	}

	baselineByHandle := make(map[string]float64, len(engagementsByHandle))
	for handle, values := range engagementsByHandle {
		baselineByHandle[handle] = ranker.Baseline(values)
	}

	enriched := make([]ranker.RankedTweet, 0, len(rows))
	for _, row := range rows {
		baseline := baselineByHandle[row.Handle]
		engagement := rowEngagement(row)
		enriched = append(enriched, ranker.RankedTweet{
			Tweet:          row,
			Engagement:     engagement,
			BaselineMedian: baseline,
			OutlierScore:   float64(engagement) / baseline,
		})
	}
	return enriched
}

// sortRows orders rows by the requested key. The sort is stable so ties
// keep their incoming order.
func sortRows(rows []ranker.RankedTweet, sortBy, sortDir string) {
	asc := sortDir == SortAsc

	var less func(a, b ranker.RankedTweet) bool
	switch sortBy {
	case SortByLikes:
		less = func(a, b ranker.RankedTweet) bool { return a.Tweet.LikeCount < b.Tweet.LikeCount }
	case SortByRetweets:
		less = func(a, b ranker.RankedTweet) bool { return a.Tweet.RetweetCount < b.Tweet.RetweetCount }
	case SortByReplies:
		less = func(a, b ranker.RankedTweet) bool { return a.Tweet.ReplyCount < b.Tweet.ReplyCount }
	case SortByEngagement:
		less = func(a, b ranker.RankedTweet) bool { return a.Engagement < b.Engagement }
	case SortByOutlier:
		less = func(a, b ranker.RankedTweet) bool { return a.OutlierScore < b.OutlierScore }
	default:
		less = func(a, b ranker.RankedTweet) bool { return a.Tweet.CreatedAt.Before(b.Tweet.CreatedAt) }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

// rowEngagement prefers the stored engagement, falling back to recomputing
// when the stored value is missing.
func rowEngagement(row domain.Tweet) int {
	if row.Engagement > 0 {
		return row.Engagement
	}
	return row.EngagementScore()
}
