package selection

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
		logger: logger.WithComponent("SelectionRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Add records a tweet as selected for script generation
func (p *Pgx) Add(ctx context.Context, sel domain.Selection) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Insert("script_selections").
		Columns("tweet_id", "handle", "reasoning", "scope", "added_at").
		Values(sel.TweetID, sel.Handle, sel.Reasoning, sel.Scope, time.Now()).
		Suffix("ON CONFLICT (tweet_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

// Remove deletes the selection for a tweet id
func (p *Pgx) Remove(ctx context.Context, tweetID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Delete("script_selections").
		Where(sq.Eq{"tweet_id": tweetID}).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

// Clear removes all selections
func (p *Pgx) Clear(ctx context.Context) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete("script_selections").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

// List returns all selections, newest first
func (p *Pgx) List(ctx context.Context) ([]*domain.Selection, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "tweet_id", "handle", "reasoning", "scope", "added_at").
		From("script_selections").
		OrderBy("added_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []*domain.Selection
	for rows.Next() {
		var sel domain.Selection
		if err := rows.Scan(&sel.ID, &sel.TweetID, &sel.Handle, &sel.Reasoning, &sel.Scope, &sel.AddedAt); err != nil {
			return nil, err
		}
		selections = append(selections, &sel)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return selections, nil
}
