package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/tweet-radar/internal/ranker"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"github.com/orgball2608/tweet-radar/internal/telegram"
	"github.com/orgball2608/tweet-radar/pkg/config"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
)

const alertLimit = 5

type SchedulerOpts struct {
	fx.In

	Ingestor  *Ingestor
	TweetRepo tweet.Repository
	Telegram  telegram.Client
	Logger    logger.Logger
	Config    *config.Config
}

// Scheduler runs the ingestion job on a cron interval and pushes outlier
// alerts after each run.
type Scheduler struct {
	ingestor  *Ingestor
	tweetRepo tweet.Repository
	telegram  telegram.Client
	logger    logger.Logger
	config    *config.Config
	scheduler gocron.Scheduler
}

func NewScheduler(opts SchedulerOpts) *Scheduler {
	return &Scheduler{
		ingestor:  opts.Ingestor,
		tweetRepo: opts.TweetRepo,
		telegram:  opts.Telegram,
		logger:    opts.Logger.WithComponent("IngestScheduler"),
		config:    opts.Config,
	}
}

// Start schedules the periodic ingestion job. A missing FETCH_CRON disables
// scheduling; ingestion then only runs on demand through the API.
func (s *Scheduler) Start(ctx context.Context) error {
	cron := s.config.Fetch.Cron
	if cron == "" {
		s.logger.Info("No fetch cron configured, scheduled ingestion disabled")
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create ingest scheduler: %w", err)
	}
	s.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.logger.Info("Context cancelled, skipping scheduled ingestion")
				return
			}

			runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()

			report, err := s.ingestor.RunForAllActive(runCtx)
			if err != nil {
				s.logger.Error("Scheduled ingestion failed", "error", err)
				return
			}
			s.logger.Info("Scheduled ingestion completed",
				"handles", len(report.Results), "stored", report.Stored)

			s.alertOutliers(runCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		s.logger.Info("Stopping ingest scheduler")
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Error("Failed to shut down ingest scheduler", "error", err)
		}
	}()

	return nil
}

// alertOutliers pushes the strongest last-24h outliers to the alert channel.
// Alerting is best effort; failures are logged and dropped.
func (s *Scheduler) alertOutliers(ctx context.Context) {
	if !s.telegram.Enabled() {
		return
	}

	since := time.Now().Add(-ranker.ResolveWindow(ranker.Window24h))
	rows, err := s.tweetRepo.GetByWindow(ctx, nil, since)
	if err != nil {
		s.logger.Error("Failed to load tweets for alerting", "error", err)
		return
	}

	ranked, _ := ranker.RankOutliers(rows, alertLimit)

	var lines []string
	for _, r := range ranked {
		if r.OutlierScore < s.config.Alert.OutlierThreshold {
			continue
		}
		line := fmt.Sprintf("@%s %.1fx baseline (%d engagement)", r.Tweet.Handle, r.OutlierScore, r.Engagement)
		if r.Tweet.URL != nil {
			line += " " + *r.Tweet.URL
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}

	msg := "Outlier tweets in the last 24h:\n" + strings.Join(lines, "\n")
	if err := s.telegram.SendMessageToChannel(msg); err != nil {
		s.logger.Error("Failed to send outlier alert", "error", err)
	}
}
