package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/internal/twitter/mocks"
	pkgerrors "github.com/orgball2608/tweet-radar/pkg/errors"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeTweetRepo struct {
	mu       sync.Mutex
	upserted []domain.Tweet
	err      error
}

func (f *fakeTweetRepo) Upsert(_ context.Context, tweets []domain.Tweet) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	f.upserted = append(f.upserted, tweets...)
	return len(tweets), 0, nil
}

func (f *fakeTweetRepo) GetByWindow(context.Context, []string, time.Time) ([]domain.Tweet, error) {
	return nil, nil
}

func (f *fakeTweetRepo) GetHistory(context.Context, tweet.HistoryFilter) ([]domain.Tweet, error) {
	return nil, nil
}

type fakeHandleRepo struct {
	active []string
}

func (f *fakeHandleRepo) Upsert(context.Context, []string) (int, error) { return 0, nil }
func (f *fakeHandleRepo) ListActive(context.Context) ([]string, error)  { return f.active, nil }
func (f *fakeHandleRepo) ListWithStats(context.Context, time.Time) ([]domain.HandleStats, error) {
	return nil, nil
}

func newIngestor(client twitter.Client, repo tweet.Repository, concurrency int) *Ingestor {
	return &Ingestor{
		twitter:      client,
		tweetRepo:    repo,
		handleRepo:   &fakeHandleRepo{},
		logger:       logger.NewNop(),
		concurrency:  concurrency,
		perUserLimit: 50,
	}
}

func recentTweet(id, handle string) domain.Tweet {
	return domain.Tweet{
		TweetID:   id,
		Handle:    handle,
		CreatedAt: time.Now().Add(-time.Hour),
		LikeCount: 1,
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{}

	handles := []string{"a", "b", "c", "d", "e"}
	for _, h := range handles {
		client.EXPECT().ResolveUserID(gomock.Any(), h).
			Return(twitter.UserLookup{UserID: "id-" + h}, nil)
		client.EXPECT().GetUserTweets(gomock.Any(), "id-"+h, 50).
			Return([]domain.Tweet{recentTweet(h+"-1", h), recentTweet(h+"-2", h)}, nil)
	}

	report, err := newIngestor(client, repo, 3).Run(context.Background(), handles)
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	for i, h := range handles {
		require.Equal(t, h, report.Results[i].Handle)
		require.Equal(t, 2, report.Results[i].Fetched)
	}
	require.Equal(t, 10, report.Stored)
	require.Len(t, repo.upserted, 10)
}

func TestRunBoundsConcurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{}

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	client.EXPECT().ResolveUserID(gomock.Any(), gomock.Any()).Times(9).
		DoAndReturn(func(context.Context, string) (twitter.UserLookup, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return twitter.UserLookup{}, pkgerrors.ErrNotFound
		})

	handles := []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9"}
	_, err := newIngestor(client, repo, 3).Run(context.Background(), handles)
	require.NoError(t, err)
	require.LessOrEqual(t, maxInFlight, 3)
}

func TestRunUnresolvableHandleIsZeroNotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{}

	client.EXPECT().ResolveUserID(gomock.Any(), "ghost").
		Return(twitter.UserLookup{}, pkgerrors.ErrNotFound)

	report, err := newIngestor(client, repo, 3).Run(context.Background(), []string{"ghost"})
	require.NoError(t, err)
	require.NoError(t, report.Results[0].Err)
	require.Zero(t, report.Results[0].Fetched)
	require.Zero(t, report.Stored)
}

func TestRunFetchFailureIsTaggedNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{}

	upstream := errors.New("upstream down")
	client.EXPECT().ResolveUserID(gomock.Any(), "bad").
		Return(twitter.UserLookup{UserID: "id-bad"}, nil)
	client.EXPECT().GetUserTweets(gomock.Any(), "id-bad", 50).
		Return(nil, upstream)

	client.EXPECT().ResolveUserID(gomock.Any(), "good").
		Return(twitter.UserLookup{UserID: "id-good"}, nil)
	client.EXPECT().GetUserTweets(gomock.Any(), "id-good", 50).
		Return([]domain.Tweet{recentTweet("g-1", "good")}, nil)

	report, err := newIngestor(client, repo, 3).Run(context.Background(), []string{"bad", "good"})
	require.NoError(t, err)
	require.ErrorIs(t, report.Results[0].Err, upstream)
	require.Zero(t, report.Results[0].Fetched)
	require.Equal(t, 1, report.Results[1].Fetched)
	require.Equal(t, 1, report.Stored)
}

func TestRunDropsTweetsOutsideRetention(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{}

	old := recentTweet("old", "a")
	old.CreatedAt = time.Now().Add(-Retention - time.Hour)
	unparsed := recentTweet("unparsed", "a")
	unparsed.CreatedAt = time.Time{}

	client.EXPECT().ResolveUserID(gomock.Any(), "a").
		Return(twitter.UserLookup{UserID: "id-a"}, nil)
	client.EXPECT().GetUserTweets(gomock.Any(), "id-a", 50).
		Return([]domain.Tweet{old, recentTweet("fresh", "a"), unparsed}, nil)

	report, err := newIngestor(client, repo, 3).Run(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Results[0].Fetched)
	require.Len(t, repo.upserted, 1)
	require.Equal(t, "fresh", repo.upserted[0].TweetID)
}

func TestRunNoUpsertForEmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repo := &fakeTweetRepo{err: errors.New("should not be called")}

	client.EXPECT().ResolveUserID(gomock.Any(), "quiet").
		Return(twitter.UserLookup{UserID: "id-quiet"}, nil)
	client.EXPECT().GetUserTweets(gomock.Any(), "id-quiet", 50).
		Return(nil, nil)

	report, err := newIngestor(client, repo, 3).Run(context.Background(), []string{"quiet"})
	require.NoError(t, err)
	require.NoError(t, report.Results[0].Err)
	require.Zero(t, report.Stored)
}
