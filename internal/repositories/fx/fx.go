package fx

import (
	"github.com/orgball2608/tweet-radar/internal/repositories/handle"
	"github.com/orgball2608/tweet-radar/internal/repositories/script"
	"github.com/orgball2608/tweet-radar/internal/repositories/selection"
	"github.com/orgball2608/tweet-radar/internal/repositories/tweet"
	"go.uber.org/fx"
)

var Module = fx.Options(
	tweet.Module,
	handle.Module,
	selection.Module,
	script.Module,
)
