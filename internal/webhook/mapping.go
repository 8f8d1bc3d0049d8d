package webhook

import (
	"log/slog"

	"github.com/Joxtacy/joxtabot/internal/command"
)

// EventSub message types carried in the Twitch-Eventsub-Message-Type header.
const (
	messageTypeNotification = "notification"
	messageTypeVerification = "webhook_callback_verification"
	messageTypeRevocation   = "revocation"
)

// Subscription types this bot reacts to.
const (
	subscriptionStreamOnline     = "stream.online"
	subscriptionRewardRedemption = "channel.channel_points_custom_reward_redemption.add"
)

// notification is the body of a "notification" delivery.
type notification struct {
	Subscription subscription `json:"subscription"`
	Event        event        `json:"event"`
}

type subscription struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type event struct {
	ID                   string `json:"id"`
	BroadcasterUserID    string `json:"broadcaster_user_id"`
	BroadcasterUserLogin string `json:"broadcaster_user_login"`
	BroadcasterUserName  string `json:"broadcaster_user_name"`
	UserID               string `json:"user_id"`
	UserLogin            string `json:"user_login"`
	UserName             string `json:"user_name"`
	UserInput            string `json:"user_input"`
	Status               string `json:"status"`
	Reward               reward `json:"reward"`
	RedeemedAt           string `json:"redeemed_at"`
	StartedAt            string `json:"started_at"`
}

type reward struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Cost   int    `json:"cost"`
	Prompt string `json:"prompt"`
}

// verificationChallenge is the body of a "webhook_callback_verification"
// delivery, sent once when a subscription is created.
type verificationChallenge struct {
	Challenge    string       `json:"challenge"`
	Subscription subscription `json:"subscription"`
}

// revokedSubscription is the body of a "revocation" delivery.
type revokedSubscription struct {
	Subscription subscription `json:"subscription"`
}

// mapNotification turns a verified notification into an internal command.
// Reward redemptions dispatch further on the reward title as configured on
// the channel.
func mapNotification(n notification) command.Command {
	switch n.Subscription.Type {
	case subscriptionStreamOnline:
		return command.StreamOnline{}
	case subscriptionRewardRedemption:
		switch n.Event.Reward.Title {
		case "First":
			return command.First{User: n.Event.UserName}
		case "Timeout":
			return command.Timeout{Seconds: 120, User: n.Event.UserName}
		case "-420":
			return command.FourTwenty{}
		case "ded":
			return command.Ded{}
		case "Nice":
			return command.Nice{}
		case "+1 Pushup":
			return command.Pushup{Count: 1}
		case "+1 Situp":
			return command.Situp{Count: 1}
		case "Emote-only Chat":
			return command.EmoteOnly{}
		default:
			slog.Warn("Reward not supported", "reward_title", n.Event.Reward.Title)
			return command.Unsupported{}
		}
	default:
		slog.Warn("Unknown subscription type", "subscription_type", n.Subscription.Type)
		return command.Unsupported{}
	}
}
