package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Notifier posts messages through a Discord bot session.
type Notifier struct {
	session   *discordgo.Session
	channelID string
}

func NewNotifier(botToken, channelID string) (*Notifier, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &Notifier{session: session, channelID: channelID}, nil
}

// Post sends text to the configured channel.
func (n *Notifier) Post(_ context.Context, text string) error {
	message, err := n.session.ChannelMessageSend(n.channelID, text)
	if err != nil {
		return fmt.Errorf("failed to create discord message: %w", err)
	}
	slog.Debug("Discord message sent", "channel_id", n.channelID, "message_id", message.ID)
	return nil
}

// NoopNotifier satisfies the notifier contract when Discord is not
// configured; announcements are logged and dropped.
type NoopNotifier struct{}

func (NoopNotifier) Post(_ context.Context, text string) error {
	slog.Info("Discord not configured, dropping announcement", "text", text)
	return nil
}
