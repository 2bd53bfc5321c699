// Package triage scores the undifferentiated feed timeline and auto-selects
// the most script-worthy tweets for downstream generation.
package triage

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/repositories/selection"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
)

const (
	DefaultBatchSize = 100
	DefaultTopCount  = 20
	MaxTopCount      = 50

	// SourceFeed tags tweets ingested from the feed timeline.
	SourceFeed = "feed"

	engagementWeight = 0.6
	contentWeight    = 0.4
)

const (
	ScopeReaction    = "reaction video"
	ScopeExplanation = "explanation video"
)

// ScoredTweet is a feed tweet with its blended relevance score and the
// selection rationale derived from it.
type ScoredTweet struct {
	Tweet               domain.Tweet
	Engagement          int
	NormalizedContent   float64
	EngagementComponent float64
	FinalScore          float64
	Reasoning           string
	Scope               string
}

type Opts struct {
	fx.In

	Twitter       twitter.Client
	TweetRepo     tweet.Repository
	SelectionRepo selection.Repository
	Logger        logger.Logger
}

type Triage struct {
	twitter       twitter.Client
	tweetRepo     tweet.Repository
	selectionRepo selection.Repository
	lexicon       Lexicon
	logger        logger.Logger
}

func New(opts Opts) *Triage {
	return &Triage{
		twitter:       opts.Twitter,
		tweetRepo:     opts.TweetRepo,
		selectionRepo: opts.SelectionRepo,
		lexicon:       DefaultLexicon(),
		logger:        opts.Logger.WithComponent("Triage"),
	}
}

// WithLexicon returns a copy of the triage service using a custom policy table.
func (x *Triage) WithLexicon(lexicon Lexicon) *Triage {
	clone := *x
	clone.lexicon = lexicon
	return &clone
}

// ContentScore computes the raw lexicon score for a text.
func (x *Triage) ContentScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	for _, term := range x.lexicon.Positive {
		score += float64(strings.Count(lower, term)) * x.lexicon.PositiveWeight
	}
	for _, term := range x.lexicon.Negative {
		score -= float64(strings.Count(lower, term)) * x.lexicon.NegativeWeight
	}

	length := utf8.RuneCountInString(text)
	if length >= 120 && length <= 500 {
		score += 2
	}
	if length < 60 {
		score--
	}
	if containsDigit(text) {
		score += 0.5
	}

	return score
}

// ScoreBatch scores every tweet in the batch and returns them sorted by
// final score, descending. The engagement component is normalized against
// the batch's own maximum, so scores are batch-relative.
func (x *Triage) ScoreBatch(tweets []domain.Tweet) []ScoredTweet {
	if len(tweets) == 0 {
		return nil
	}

	maxEngagement := 1
	for _, t := range tweets {
		if e := t.EngagementScore(); e > maxEngagement {
			maxEngagement = e
		}
	}
	logMax := math.Log(1 + float64(maxEngagement))

	scored := make([]ScoredTweet, 0, len(tweets))
	for _, t := range tweets {
		engagement := t.EngagementScore()
		engagementComponent := math.Log(1+float64(engagement)) / logMax
		normalizedContent := clamp01(x.ContentScore(t.Text) / 6)
		finalScore := engagementWeight*engagementComponent + contentWeight*normalizedContent

		s := ScoredTweet{
			Tweet:               t,
			Engagement:          engagement,
			NormalizedContent:   normalizedContent,
			EngagementComponent: engagementComponent,
			FinalScore:          finalScore,
		}
		s.Reasoning = reasoning(s)
		s.Scope = scope(s)
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}

// AutoSelect fetches up to count feed tweets, stores them tagged with the
// feed source, and records the top most script-worthy ones as selections.
// Returns how many selections were newly added and the batch size scored.
func (x *Triage) AutoSelect(ctx context.Context, count, top int) (int, int, error) {
	if count <= 0 || count > DefaultBatchSize {
		count = DefaultBatchSize
	}
	if top <= 0 {
		top = DefaultTopCount
	}
	if top > MaxTopCount {
		top = MaxTopCount
	}

	tweets, err := x.twitter.GetFeedTimeline(ctx, count)
	if err != nil {
		return 0, 0, err
	}
	if len(tweets) == 0 {
		return 0, 0, nil
	}

	for i := range tweets {
		tweets[i].Sources = []string{SourceFeed}
	}
	if _, _, err := x.tweetRepo.Upsert(ctx, tweets); err != nil {
		return 0, 0, err
	}

	scored := x.ScoreBatch(tweets)
	if top > len(scored) {
		top = len(scored)
	}

	selected := 0
	for _, s := range scored[:top] {
		added, err := x.selectionRepo.Add(ctx, domain.Selection{
			TweetID:   s.Tweet.TweetID,
			Handle:    s.Tweet.Handle,
			Reasoning: s.Reasoning,
			Scope:     s.Scope,
		})
		if err != nil {
			return selected, len(tweets), err
		}
		if added {
			selected++
		}
	}

	x.logger.Info("Auto-select completed", "scored", len(tweets), "selected", selected)
	return selected, len(tweets), nil
}

// reasoning explains why a tweet was selected, checking the strongest
// signal first.
func reasoning(s ScoredTweet) string {
	switch {
	case s.EngagementComponent > 0.6:
		return "Strong engagement for this batch"
	case s.NormalizedContent > 0.5:
		return "Clear insight with actionable framing"
	case containsDigit(s.Tweet.Text):
		return "Mentions specific details worth unpacking"
	default:
		return "Balanced mix of reach and substance"
	}
}

// scope suggests how the tweet should be used downstream.
func scope(s ScoredTweet) string {
	lower := strings.ToLower(s.Tweet.Text)
	if strings.Contains(lower, "?") || strings.Contains(lower, "hot take") || strings.Contains(lower, "thoughts") {
		return ScopeReaction
	}
	if s.NormalizedContent > 0.55 {
		return ScopeExplanation
	}
	return ScopeReaction
}

func containsDigit(text string) bool {
	return strings.ContainsFunc(text, unicode.IsDigit)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
