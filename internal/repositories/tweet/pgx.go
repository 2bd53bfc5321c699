package tweet

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/repositories"
	"github.com/orgball2608/tweet-radar/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("TweetRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Upsert stores tweets keyed by tweet_id
func (p *Pgx) Upsert(ctx context.Context, tweets []domain.Tweet) (int, int, error) {
	inserted := 0
	updated := 0

	for _, t := range tweets {
		query, args, err := upsertQuery(t)
		if err != nil {
			return inserted, updated, repositories.ErrBadQuery
		}

		var isInsert bool
		if err := p.pg.QueryRow(ctx, query, args...).Scan(&isInsert); err != nil {
			return inserted, updated, err
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}

	return inserted, updated, nil
}

// upsertQuery builds the insert for one tweet. A nil sources slice would be
// encoded as SQL NULL and violate the NOT NULL column, so it is coalesced to
// an empty array.
func upsertQuery(t domain.Tweet) (string, []interface{}, error) {
	sources := t.Sources
	if sources == nil {
		sources = []string{}
	}

	return repositories.SqBuilder.
		Insert("tweets").
		Columns("tweet_id", "handle", "created_at", "text", "author_name", "author_username",
			"reply_count", "retweet_count", "like_count", "engagement", "url", "sources").
		Values(t.TweetID, t.Handle, t.CreatedAt, t.Text, t.AuthorName, t.AuthorUsername,
			t.ReplyCount, t.RetweetCount, t.LikeCount, t.Engagement, t.URL, sources).
		Suffix(`ON CONFLICT (tweet_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			created_at = EXCLUDED.created_at,
			text = EXCLUDED.text,
			author_name = EXCLUDED.author_name,
			author_username = EXCLUDED.author_username,
			reply_count = EXCLUDED.reply_count,
			retweet_count = EXCLUDED.retweet_count,
			like_count = EXCLUDED.like_count,
			engagement = EXCLUDED.engagement,
			url = EXCLUDED.url,
			sources = EXCLUDED.sources
			RETURNING (xmax = 0) AS is_insert`).
		ToSql()
}

// GetByWindow returns tweets for the given handles created at or after since
func (p *Pgx) GetByWindow(ctx context.Context, handles []string, since time.Time) ([]domain.Tweet, error) {
	builder := repositories.SqBuilder.
		Select(columns()...).
		From("tweets").
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC")

	if len(handles) > 0 {
		builder = builder.Where(sq.Eq{"handle": handles})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return p.queryTweets(ctx, query, args)
}

// GetHistory returns tweets matching the pushdown filter, newest first
func (p *Pgx) GetHistory(ctx context.Context, filter HistoryFilter) ([]domain.Tweet, error) {
	builder := repositories.SqBuilder.
		Select(columns()...).
		From("tweets").
		OrderBy("created_at DESC")

	if len(filter.Handles) > 0 {
		builder = builder.Where(sq.Eq{"handle": filter.Handles})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.Since})
	}
	if filter.Until != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.Until})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return p.queryTweets(ctx, query, args)
}

func columns() []string {
	return []string{
		"id", "tweet_id", "handle", "created_at", "text", "author_name", "author_username",
		"reply_count", "retweet_count", "like_count", "engagement", "url", "sources",
	}
}

func (p *Pgx) queryTweets(ctx context.Context, query string, args []interface{}) ([]domain.Tweet, error) {
	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tweets []domain.Tweet
	for rows.Next() {
		var t domain.Tweet
		if err := rows.Scan(&t.ID, &t.TweetID, &t.Handle, &t.CreatedAt, &t.Text, &t.AuthorName,
			&t.AuthorUsername, &t.ReplyCount, &t.RetweetCount, &t.LikeCount, &t.Engagement,
			&t.URL, &t.Sources); err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tweets, nil
}
