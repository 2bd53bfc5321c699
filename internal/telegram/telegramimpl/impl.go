package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/tweet-radar/internal/telegram"
	"github.com/orgball2608/tweet-radar/pkg/config"
	"github.com/orgball2608/tweet-radar/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

// New creates the alert channel. Without a bot token it degrades to a
// disabled client so the rest of the app keeps working.
func New(opts Opts) (*TelegramImpl, error) {
	if opts.Config.Telegram.Token == "" {
		opts.Logger.Info("Telegram token not set, alerts disabled")
		return &TelegramImpl{Logger: opts.Logger, Config: opts.Config}, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: opts.Logger,
		Config: opts.Config,
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)

// Enabled reports whether a bot token was configured
func (t *TelegramImpl) Enabled() bool {
	return t.TgBot != nil
}

// SendMessageToChannel pushes a notification to the configured channel
func (t *TelegramImpl) SendMessageToChannel(text string) error {
	if t.TgBot == nil {
		return nil
	}

	var msg tgbotapi.MessageConfig
	if t.Config.Telegram.Channel != "" {
		msg = tgbotapi.NewMessageToChannel(t.Config.Telegram.Channel, text)
	} else {
		msg = tgbotapi.NewMessage(t.Config.Telegram.User, text)
	}

	if _, err := t.TgBot.Send(msg); err != nil {
		t.Logger.Error("Failed to send telegram message", "error", err)
		return err
	}
	return nil
}
