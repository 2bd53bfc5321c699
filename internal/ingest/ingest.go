// Package ingest coordinates fetching tracked authors' recent tweets and
// persisting them, with bounded upstream parallelism.
package ingest

import (
	"context"
	"time"

	"github.com/orgball2608/tweet-radar/internal/repositories/handle"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/twitter"
	"github.com/orgball2608/tweet-radar/pkg/config"
	pkgerrors "github.com/orgball2608/tweet-radar/pkg/errors"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// Retention is how far back ingestion keeps tweets, independent of any
// analysis window a caller may use later.
const Retention = 30 * 24 * time.Hour

// HandleResult is the tagged per-author outcome of one ingestion run.
// A failed handle carries its error instead of failing the whole run.
type HandleResult struct {
	Handle  string `json:"handle"`
	Fetched int    `json:"count"`
	Err     error  `json:"-"`
}

// Report aggregates one ingestion run.
type Report struct {
	Results []HandleResult
	Stored  int
}

type Opts struct {
	fx.In

	Twitter    twitter.Client
	TweetRepo  tweet.Repository
	HandleRepo handle.Repository
	Logger     logger.Logger
	Config     *config.Config
}

type Ingestor struct {
	twitter      twitter.Client
	tweetRepo    tweet.Repository
	handleRepo   handle.Repository
	logger       logger.Logger
	concurrency  int
	perUserLimit int
}

func New(opts Opts) *Ingestor {
	concurrency := opts.Config.Fetch.Concurrency
	if concurrency < 1 {
		concurrency = 3
	}
	perUserLimit := opts.Config.Fetch.PerUserLimit
	if perUserLimit < 1 {
		perUserLimit = 50
	}

	return &Ingestor{
		twitter:      opts.Twitter,
		tweetRepo:    opts.TweetRepo,
		handleRepo:   opts.HandleRepo,
		logger:       opts.Logger.WithComponent("Ingestor"),
		concurrency:  concurrency,
		perUserLimit: perUserLimit,
	}
}

// Run fetches and stores recent tweets for the given handles. At most
// `concurrency` fetches are in flight at once; results are written by index
// so the report order always matches the input order. One handle failing
// never aborts the others.
func (i *Ingestor) Run(ctx context.Context, handles []string) (Report, error) {
	cutoff := time.Now().Add(-Retention)
	results := make([]HandleResult, len(handles))

	var g errgroup.Group
	g.SetLimit(i.concurrency)

	for idx, h := range handles {
		g.Go(func() error {
			results[idx] = i.fetchHandle(ctx, h, cutoff)
			return nil
		})
	}
	// Per-handle errors land in the results, never in the group.
	_ = g.Wait()

	report := Report{Results: results}
	for _, r := range results {
		report.Stored += r.Fetched
	}
	return report, nil
}

// fetchHandle resolves one author and stores their recent tweets. An
// unresolvable handle degrades to zero tweets; other failures are tagged
// on the result.
func (i *Ingestor) fetchHandle(ctx context.Context, rawHandle string, cutoff time.Time) HandleResult {
	result := HandleResult{Handle: rawHandle}

	lookup, err := i.twitter.ResolveUserID(ctx, rawHandle)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			i.logger.Debug("Handle not resolvable, skipping", "handle", rawHandle)
			return result
		}
		i.logger.Warn("Failed to resolve handle", "handle", rawHandle, "error", err)
		result.Err = err
		return result
	}

	tweets, err := i.twitter.GetUserTweets(ctx, lookup.UserID, i.perUserLimit)
	if err != nil {
		i.logger.Warn("Failed to fetch tweets", "handle", rawHandle, "error", err)
		result.Err = err
		return result
	}

	recent := tweets[:0:0]
	for _, t := range tweets {
		if t.CreatedAt.IsZero() || t.CreatedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, t)
	}

	if len(recent) > 0 {
		if _, _, err := i.tweetRepo.Upsert(ctx, recent); err != nil {
			i.logger.Error("Failed to store tweets", "handle", rawHandle, "error", err)
			result.Err = err
			return result
		}
	}

	result.Fetched = len(recent)
	return result
}

// RunForAllActive ingests every active tracked handle.
func (i *Ingestor) RunForAllActive(ctx context.Context) (Report, error) {
	handles, err := i.handleRepo.ListActive(ctx)
	if err != nil {
		return Report{}, err
	}
	if len(handles) == 0 {
		return Report{}, nil
	}
	return i.Run(ctx, handles)
}
