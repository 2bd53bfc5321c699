package script

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/tweet-radar/internal/domain"
	"github.com/orgball2608/tweet-radar/internal/repositories"
	"github.com/orgball2608/tweet-radar/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ScriptRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// SaveScript persists a generated script with its prompt and model
func (p *Pgx) SaveScript(ctx context.Context, s domain.Script) (int, error) {
	query, args, err := repositories.SqBuilder.
		Insert("scripts").
		Columns("model", "prompt", "output", "created_at").
		Values(s.Model, s.Prompt, s.Output, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListScripts returns saved scripts, newest first
func (p *Pgx) ListScripts(ctx context.Context) ([]*domain.Script, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "model", "prompt", "output", "created_at").
		From("scripts").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scripts []*domain.Script
	for rows.Next() {
		var s domain.Script
		if err := rows.Scan(&s.ID, &s.Model, &s.Prompt, &s.Output, &s.CreatedAt); err != nil {
			return nil, err
		}
		scripts = append(scripts, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scripts, nil
}

// AddTemplate persists a reusable prompt template
func (p *Pgx) AddTemplate(ctx context.Context, tpl domain.PromptTemplate) (int, error) {
	query, args, err := repositories.SqBuilder.
		Insert("prompt_templates").
		Columns("name", "content", "created_at").
		Values(tpl.Name, tpl.Content, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListTemplates returns prompt templates, newest first
func (p *Pgx) ListTemplates(ctx context.Context) ([]*domain.PromptTemplate, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "name", "content", "created_at").
		From("prompt_templates").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.PromptTemplate
	for rows.Next() {
		var tpl domain.PromptTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Content, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}
