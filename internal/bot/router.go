package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Joxtacy/joxtabot/internal/command"
	"github.com/Joxtacy/joxtabot/internal/irc"
	"github.com/Joxtacy/joxtabot/internal/metrics"
	"github.com/Joxtacy/joxtabot/internal/twitch"
)

const (
	emoteOnlyDuration   = 120 * time.Second
	collaboratorTimeout = 10 * time.Second

	fallbackGameName = "Some cool game"
	fallbackTitle    = "Some good title"
)

// autoReplies are checked in priority order against PRIVMSG text; the first
// matching substring wins and is echoed back verbatim.
var autoReplies = []string{"catJAM", "widepeepoHappy"}

// ChatSender enqueues outbound chat messages.
type ChatSender interface {
	SendMessage(ctx context.Context, text string) error
}

// EventPublisher fans a text event out to overlay clients.
type EventPublisher interface {
	Publish(payload []byte)
}

// StreamInfoProvider looks up current stream metadata.
type StreamInfoProvider interface {
	GetStreamInfo(ctx context.Context) (twitch.StreamInfo, error)
}

// Notifier posts an announcement to the external messaging channel.
type Notifier interface {
	Post(ctx context.Context, text string) error
}

// RewardStore persists reward state across restarts.
type RewardStore interface {
	SetFirstClaim(ctx context.Context, user string) error
	GetFirstClaim(ctx context.Context) (string, error)
	ClearFirstClaim(ctx context.Context) error
}

// Router maps parsed chat messages and webhook-derived commands to actions.
// Collaborator failures are logged and swallowed: nothing routed through here
// may take down the chat connection or a webhook response.
type Router struct {
	chat     ChatSender
	relay    EventPublisher
	streams  StreamInfoProvider
	notifier Notifier
	rewards  RewardStore
	clock    clockwork.Clock
	channel  string

	// ctx bounds delayed actions (the emote-only-off timer) so they cannot
	// outlive shutdown.
	ctx context.Context
}

func NewRouter(ctx context.Context, chat ChatSender, relay EventPublisher, streams StreamInfoProvider, notifier Notifier, rewards RewardStore, clock clockwork.Clock, channel string) *Router {
	return &Router{
		chat:     chat,
		relay:    relay,
		streams:  streams,
		notifier: notifier,
		rewards:  rewards,
		clock:    clock,
		channel:  channel,
		ctx:      ctx,
	}
}

// HandleMessage reacts to one parsed chat line.
func (r *Router) HandleMessage(msg irc.ParsedMessage) {
	switch cmd := msg.Command.(type) {
	case irc.Privmsg:
		r.handlePrivmsg(cmd)
	case irc.Join:
		if msg.Source != nil && msg.Source.Nick != "" {
			slog.Debug("User joined", "nick", msg.Source.Nick, "channel", cmd.Channel)
		}
	case irc.Part:
		if msg.Source != nil && msg.Source.Nick != "" {
			slog.Debug("User left", "nick", msg.Source.Nick, "channel", cmd.Channel)
		}
	case irc.Notice:
		slog.Info("Server notice", "channel", cmd.Channel, "message", cmd.Message)
	case irc.ClearChat:
		if cmd.User == "" {
			slog.Info("Chat cleared", "channel", cmd.Channel)
		} else {
			slog.Info("User chat cleared", "channel", cmd.Channel, "user", cmd.User)
		}
	case irc.Whisper:
		slog.Debug("Whisper received", "from", cmd.FromUser)
	case irc.Unsupported:
		slog.Debug("Unsupported chat command", "raw", cmd.Raw)
	default:
		// Room/user state updates and numerics carry nothing to act on.
	}
}

func (r *Router) handlePrivmsg(msg irc.Privmsg) {
	if name, ok := displayName(msg.Tags); ok {
		slog.Debug("Chat message", "display_name", name, "channel", msg.Channel, "message", msg.Message)
	}

	if strings.TrimSpace(msg.Message) == "!first" {
		r.replyFirstClaim()
		return
	}

	for _, trigger := range autoReplies {
		if strings.Contains(msg.Message, trigger) {
			if err := r.chat.SendMessage(r.ctx, trigger); err != nil {
				slog.Error("Failed to send auto-reply", "trigger", trigger, "error", err)
			}
			return
		}
	}
}

// replyFirstClaim answers the !first chat command with the stored claimant
// for the current stream.
func (r *Router) replyFirstClaim() {
	ctx, cancel := context.WithTimeout(r.ctx, collaboratorTimeout)
	defer cancel()

	user, err := r.rewards.GetFirstClaim(ctx)
	if err != nil {
		slog.Error("Failed to look up first claim", "error", err)
		return
	}

	text := "Nobody has claimed first yet!"
	if user != "" {
		text = fmt.Sprintf("%s was first!", user)
	}
	if err := r.chat.SendMessage(r.ctx, text); err != nil {
		slog.Error("Failed to send first claim reply", "error", err)
	}
}

func displayName(tags irc.TagSet) (string, bool) {
	if tags == nil {
		return "", false
	}
	if name, ok := tags["display-name"].(irc.DisplayName); ok {
		return string(name), true
	}
	return "", false
}

// Dispatch reacts to one webhook-derived command.
func (r *Router) Dispatch(cmd command.Command) {
	metrics.CommandsHandledTotal.WithLabelValues(commandKind(cmd)).Inc()

	switch c := cmd.(type) {
	case command.StreamOnline:
		r.handleStreamOnline()
	case command.First:
		r.handleFirst(c.User)
	case command.Ded:
		r.relay.Publish([]byte("Death"))
	case command.FourTwenty:
		r.relay.Publish([]byte("420"))
	case command.Nice:
		r.relay.Publish([]byte("Nice"))
	case command.EmoteOnly:
		r.handleEmoteOnly()
	case command.Privmsg:
		if err := r.chat.SendMessage(r.ctx, c.Text); err != nil {
			slog.Error("Failed to send privmsg command", "error", err)
		}
	case command.Timeout:
		// Reserved: moderation actions are not issued from rewards yet.
		slog.Info("Timeout redeemed", "user", c.User, "seconds", c.Seconds)
	case command.Pushup:
		slog.Info("Pushup redeemed", "count", c.Count)
	case command.Situp:
		slog.Info("Situp redeemed", "count", c.Count)
	case command.Unsupported:
		slog.Debug("Unsupported command dropped")
	}
}

// handleStreamOnline clears the previous stream's first claim, then posts the
// announcement. A failed metadata lookup falls back to fixed text rather than
// suppressing the announcement.
func (r *Router) handleStreamOnline() {
	ctx, cancel := context.WithTimeout(r.ctx, collaboratorTimeout)
	defer cancel()

	if err := r.rewards.ClearFirstClaim(ctx); err != nil {
		slog.Error("Failed to clear first claim", "error", err)
	}

	gameName, title := fallbackGameName, fallbackTitle
	info, err := r.streams.GetStreamInfo(ctx)
	if err != nil {
		slog.Warn("Could not get stream info", "error", err)
		metrics.StreamOnlineNotificationsTotal.WithLabelValues("metadata_fallback").Inc()
	} else {
		gameName, title = info.GameName, info.Title
	}

	text := fmt.Sprintf("**Hi @everyone! I am live!**\n> Playing: %s\n> Title: %s\nhttps://twitch.tv/%s", gameName, title, r.channel)

	if err := r.notifier.Post(ctx, text); err != nil {
		slog.Error("Failed to post online notification", "error", err)
		metrics.StreamOnlineNotificationsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.StreamOnlineNotificationsTotal.WithLabelValues("sent").Inc()
}

func (r *Router) handleFirst(user string) {
	ctx, cancel := context.WithTimeout(r.ctx, collaboratorTimeout)
	defer cancel()

	if err := r.rewards.SetFirstClaim(ctx, user); err != nil {
		slog.Error("Failed to persist first claim", "user", user, "error", err)
		return
	}
	slog.Info("First claimed", "user", user)
}

// handleEmoteOnly enables emote-only chat and schedules the disable after a
// fixed window. The timer observes the router context so it dies with the
// process instead of firing into a closed connection.
func (r *Router) handleEmoteOnly() {
	if err := r.chat.SendMessage(r.ctx, "/emoteonly"); err != nil {
		slog.Error("Failed to enable emote-only chat", "error", err)
		return
	}

	go func() {
		timer := r.clock.NewTimer(emoteOnlyDuration)
		defer timer.Stop()

		select {
		case <-timer.Chan():
			if err := r.chat.SendMessage(r.ctx, "/emoteonlyoff"); err != nil {
				slog.Error("Failed to disable emote-only chat", "error", err)
			}
		case <-r.ctx.Done():
		}
	}()
}

func commandKind(cmd command.Command) string {
	switch cmd.(type) {
	case command.StreamOnline:
		return "stream_online"
	case command.First:
		return "first"
	case command.Timeout:
		return "timeout"
	case command.FourTwenty:
		return "four_twenty"
	case command.Ded:
		return "ded"
	case command.Nice:
		return "nice"
	case command.Pushup:
		return "pushup"
	case command.Situp:
		return "situp"
	case command.EmoteOnly:
		return "emote_only"
	case command.Privmsg:
		return "privmsg"
	default:
		return "unsupported"
	}
}
