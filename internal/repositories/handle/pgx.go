package handle

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
		logger: logger.WithComponent("HandleRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Upsert registers handles, reactivating any that already exist
func (p *Pgx) Upsert(ctx context.Context, handles []string) (int, error) {
	count := 0
	for _, raw := range handles {
		normalized := domain.NormalizeHandle(raw)
		if normalized == "" {
			continue
		}

		query, args, err := repositories.SqBuilder.
			Insert("handles").
			Columns("handle", "active", "created_at").
			Values(normalized, true, time.Now()).
			Suffix("ON CONFLICT (handle) DO UPDATE SET active = TRUE").
			ToSql()
		if err != nil {
			return count, repositories.ErrBadQuery
		}

		if _, err := p.pg.Exec(ctx, query, args...); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ListActive returns all active handles
func (p *Pgx) ListActive(ctx context.Context) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("handle").
		From("handles").
		Where(sq.Eq{"active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return handles, nil
}

// ListWithStats returns per-handle tweet counts and average engagement
func (p *Pgx) ListWithStats(ctx context.Context, since time.Time) ([]domain.HandleStats, error) {
	query, args, err := repositories.SqBuilder.
		Select(
			"h.handle",
			"COUNT(t.id) AS tweet_count",
			"COALESCE(AVG(t.engagement), 0) AS avg_engagement",
		).
		From("handles h").
		LeftJoin("tweets t ON t.handle = h.handle AND t.created_at >= ?", since).
		Where(sq.Eq{"h.active": true}).
		GroupBy("h.handle").
		OrderBy("tweet_count DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.HandleStats
	for rows.Next() {
		var s domain.HandleStats
		if err := rows.Scan(&s.Handle, &s.TweetCount, &s.AvgEngagement); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
