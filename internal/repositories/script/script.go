package script

import (
	"context"

	"github.com/orgball2608/tweet-radar/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=script.go -destination=mocks/mock.go -package=mocks
type Repository interface {
	// SaveScript persists a generated script with its prompt and model
	SaveScript(ctx context.Context, s domain.Script) (int, error)

	// ListScripts returns saved scripts, newest first
	ListScripts(ctx context.Context) ([]*domain.Script, error)

	// AddTemplate persists a reusable prompt template
	AddTemplate(ctx context.Context, tpl domain.PromptTemplate) (int, error)

	// ListTemplates returns prompt templates, newest first
	ListTemplates(ctx context.Context) ([]*domain.PromptTemplate, error)
}
