package triage

import (
	"context"
	"testing"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/twitter/mocks"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeTweetRepo struct {
	upserted []domain.Tweet
}

func (f *fakeTweetRepo) Upsert(_ context.Context, tweets []domain.Tweet) (int, int, error) {
	f.upserted = append(f.upserted, tweets...)
	return len(tweets), 0, nil
}

func (f *fakeTweetRepo) GetByWindow(context.Context, []string, time.Time) ([]domain.Tweet, error) {
	return nil, nil
}

func (f *fakeTweetRepo) GetHistory(context.Context, tweet.HistoryFilter) ([]domain.Tweet, error) {
	return nil, nil
}

type fakeSelectionRepo struct {
	existing map[string]bool
	added    []domain.Selection
}

func (f *fakeSelectionRepo) Add(_ context.Context, sel domain.Selection) (bool, error) {
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	if f.existing[sel.TweetID] {
		return false, nil
	}
	f.existing[sel.TweetID] = true
	f.added = append(f.added, sel)
	return true, nil
}

func (f *fakeSelectionRepo) Remove(context.Context, string) (bool, error) { return false, nil }
func (f *fakeSelectionRepo) Clear(context.Context) (int64, error)         { return 0, nil }
func (f *fakeSelectionRepo) List(context.Context) ([]*domain.Selection, error) {
	return nil, nil
}

func newTriage(t *testing.T, client *mocks.MockClient, tweets *fakeTweetRepo, selections *fakeSelectionRepo) *Triage {
	t.Helper()
	return New(Opts{
		Twitter:       client,
		TweetRepo:     tweets,
		SelectionRepo: selections,
		Logger:        logger.NewNop(),
	})
}

func scoreOnly() *Triage {
	return &Triage{lexicon: DefaultLexicon(), logger: logger.NewNop()}
}

func TestContentScoreSpamShortText(t *testing.T) {
	x := scoreOnly()

	// One negative term, under 60 chars, no digits: -1.5 - 1 = -2.5.
	text := "this giveaway is pure spam junk filler!!"
	require.Len(t, text, 40)
	require.Equal(t, -2.5, x.ContentScore(text))

	scored := x.ScoreBatch([]domain.Tweet{{TweetID: "1", Text: text}})
	require.Equal(t, 0.0, scored[0].NormalizedContent)
}

func TestScoreBatchFinalScoreBounds(t *testing.T) {
	x := scoreOnly()

	tweets := []domain.Tweet{
		{TweetID: "1", Text: "short", LikeCount: 1000000},
		{TweetID: "2", Text: "a framework and a lesson on how to take the next step, because every guide needs a principle, a strategy and an example with real insight behind it to matter at all", LikeCount: 3},
		{TweetID: "3", Text: "giveaway airdrop nft dm me", LikeCount: 0},
	}

	for _, s := range x.ScoreBatch(tweets) {
		require.GreaterOrEqual(t, s.FinalScore, 0.0)
		require.LessOrEqual(t, s.FinalScore, 1.0)
	}
}

func TestScoreBatchDoublingEngagementIsMonotonic(t *testing.T) {
	x := scoreOnly()

	base := []domain.Tweet{
		{TweetID: "1", Text: "one", LikeCount: 10},
		{TweetID: "2", Text: "two", LikeCount: 100},
	}
	doubled := []domain.Tweet{
		{TweetID: "1", Text: "one", LikeCount: 20},
		{TweetID: "2", Text: "two", LikeCount: 200},
	}

	before := x.ScoreBatch(base)
	after := x.ScoreBatch(doubled)

	byID := func(scored []ScoredTweet, id string) ScoredTweet {
		for _, s := range scored {
			if s.Tweet.TweetID == id {
				return s
			}
		}
		t.Fatalf("tweet %s not found", id)
		return ScoredTweet{}
	}

	for _, id := range []string{"1", "2"} {
		b, a := byID(before, id), byID(after, id)
		require.Equal(t, b.NormalizedContent, a.NormalizedContent)
		require.GreaterOrEqual(t, a.EngagementComponent, b.EngagementComponent)
	}
}

func TestScoreBatchEmpty(t *testing.T) {
	require.Nil(t, scoreOnly().ScoreBatch(nil))
}

func TestReasoningPrecedence(t *testing.T) {
	require.Equal(t, "Strong engagement for this batch",
		reasoning(ScoredTweet{EngagementComponent: 0.9, NormalizedContent: 0.9}))
	require.Equal(t, "Clear insight with actionable framing",
		reasoning(ScoredTweet{EngagementComponent: 0.1, NormalizedContent: 0.6}))
	require.Equal(t, "Mentions specific details worth unpacking",
		reasoning(ScoredTweet{Tweet: domain.Tweet{Text: "grew 40 percent"}}))
	require.Equal(t, "Balanced mix of reach and substance",
		reasoning(ScoredTweet{Tweet: domain.Tweet{Text: "plain"}}))
}

func TestScope(t *testing.T) {
	require.Equal(t, ScopeReaction, scope(ScoredTweet{Tweet: domain.Tweet{Text: "what do you think?"}}))
	require.Equal(t, ScopeReaction, scope(ScoredTweet{Tweet: domain.Tweet{Text: "Hot take incoming"}}))
	require.Equal(t, ScopeReaction, scope(ScoredTweet{Tweet: domain.Tweet{Text: "thoughts on this"}}))
	require.Equal(t, ScopeExplanation, scope(ScoredTweet{NormalizedContent: 0.6, Tweet: domain.Tweet{Text: "plain"}}))
	require.Equal(t, ScopeReaction, scope(ScoredTweet{NormalizedContent: 0.1, Tweet: domain.Tweet{Text: "plain"}}))
}

func TestAutoSelectCountsOnlyNewSelections(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	tweetRepo := &fakeTweetRepo{}
	selectionRepo := &fakeSelectionRepo{existing: map[string]bool{"big": true}}

	feed := []domain.Tweet{
		{TweetID: "big", Handle: "a", Text: "big", LikeCount: 1000},
		{TweetID: "mid", Handle: "b", Text: "mid", LikeCount: 100},
		{TweetID: "low", Handle: "c", Text: "low", LikeCount: 1},
	}
	client.EXPECT().GetFeedTimeline(gomock.Any(), 10).Return(feed, nil)

	x := newTriage(t, client, tweetRepo, selectionRepo)
	selected, total, err := x.AutoSelect(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	// "big" was already selected, only "mid" is new within the top 2.
	require.Equal(t, 1, selected)
	require.Len(t, selectionRepo.added, 1)
	require.Equal(t, "mid", selectionRepo.added[0].TweetID)

	// Feed tweets are persisted tagged with their origin.
	require.Len(t, tweetRepo.upserted, 3)
	for _, stored := range tweetRepo.upserted {
		require.Equal(t, []string{SourceFeed}, stored.Sources)
	}
}

func TestAutoSelectEmptyFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetFeedTimeline(gomock.Any(), DefaultBatchSize).Return(nil, nil)

	x := newTriage(t, client, &fakeTweetRepo{}, &fakeSelectionRepo{})
	selected, total, err := x.AutoSelect(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Zero(t, selected)
	require.Zero(t, total)
}
