package telegram

type Client interface {
	// SendMessageToChannel pushes a notification to the configured channel,
	// or to the default user when no channel is set.
	SendMessageToChannel(text string) error

	// Enabled reports whether a bot token was configured
	Enabled() bool
}
