package irc

import (
	"log/slog"
	"strconv"
	"strings"
)

// TagSet maps a tag key to its decoded value. Nil when the line carried no
// tag block.
type TagSet map[string]Tag

// Tag is the sealed union of decoded tag values. Keys the parser does not
// recognize decode to Unknown rather than being dropped, so callers can detect
// that a tag was present but not understood.
type Tag interface{ ircTag() }

// BadgeInfo holds how long a user has been subscribed, in months.
// `@badge-info=subscriber/8`
type BadgeInfo int

// Badges is the list of badges the user displays.
type Badges []Badge

// BanDuration is a timeout duration in seconds.
type BanDuration int

// ClientNonce echoes the nonce the client sent with its message.
type ClientNonce string

// Color is the hex RGB color of the user's name, e.g. "#FF0000". May be empty
// if the user never set one.
type Color string

// DisplayName is the user's display name. May be empty if never set.
type DisplayName string

// EmoteOnly reports whether emote-only mode is on.
type EmoteOnly bool

// Emotes lists the emotes used in the message and their text positions.
type Emotes []Emote

// EmoteSets lists the emote set IDs available to the user.
type EmoteSets []int

// FirstMsg reports whether this is the user's first message in the channel.
type FirstMsg bool

// FollowersOnly is how long, in minutes, a user must have followed before
// chatting. -1 means the room is not restricted to followers.
type FollowersOnly int

// ID uniquely identifies the message.
type ID string

// Login is the login name of the user whose action generated the message.
type Login string

// Mod reports whether the user is a moderator.
type Mod bool

// MsgID programmatically identifies a NOTICE outcome.
type MsgID string

// MsgParamCumulativeMonths is the total months subscribed (sub/resub notices).
type MsgParamCumulativeMonths int

// MsgParamMonths is the total months subscribed (subgift notices).
type MsgParamMonths int

// MsgParamRecipientDisplayName is the gift recipient's display name.
type MsgParamRecipientDisplayName string

// MsgParamRecipientID is the gift recipient's user ID.
type MsgParamRecipientID string

// MsgParamRecipientName is the gift recipient's user name.
type MsgParamRecipientName string

// MsgParamStreakMonths is the consecutive months subscribed, 0 when the user
// does not share their streak.
type MsgParamStreakMonths int

// MsgParamShouldShareStreak reports whether the user shares their sub streak.
type MsgParamShouldShareStreak bool

// MsgParamSubPlan is the subscription plan: "Prime", "1000", "2000" or "3000".
type MsgParamSubPlan string

// MsgParamSubPlanName is the display name of the subscription plan.
type MsgParamSubPlanName string

// R9K reports whether messages must be unique.
type R9K bool

// RoomID is the ID of the chat room.
type RoomID string

// Slow is how long, in seconds, users must wait between messages.
type Slow int

// Subscriber reports whether the user is a subscriber.
type Subscriber bool

// SubsOnly reports whether only subscribers and moderators can chat.
type SubsOnly bool

// SystemMsg is the system message shown for a USERNOTICE event.
type SystemMsg string

// TargetMsgID is the ID of the message the command relates to.
type TargetMsgID string

// TargetUserID is the ID of the user the command relates to.
type TargetUserID string

// Turbo reports whether the user has Turbo.
type Turbo bool

// TmiSentTs is the UNIX timestamp the server sent the message.
type TmiSentTs string

// UserID is the ID of the user.
type UserID string

// UserType is the kind of user that sent the message.
type UserType UserKind

// Unknown marks a tag key the parser does not recognize.
type Unknown struct{}

func (BadgeInfo) ircTag()                    {}
func (Badges) ircTag()                       {}
func (BanDuration) ircTag()                  {}
func (ClientNonce) ircTag()                  {}
func (Color) ircTag()                        {}
func (DisplayName) ircTag()                  {}
func (EmoteOnly) ircTag()                    {}
func (Emotes) ircTag()                       {}
func (EmoteSets) ircTag()                    {}
func (FirstMsg) ircTag()                     {}
func (FollowersOnly) ircTag()                {}
func (ID) ircTag()                           {}
func (Login) ircTag()                        {}
func (Mod) ircTag()                          {}
func (MsgID) ircTag()                        {}
func (MsgParamCumulativeMonths) ircTag()     {}
func (MsgParamMonths) ircTag()               {}
func (MsgParamRecipientDisplayName) ircTag() {}
func (MsgParamRecipientID) ircTag()          {}
func (MsgParamRecipientName) ircTag()        {}
func (MsgParamStreakMonths) ircTag()         {}
func (MsgParamShouldShareStreak) ircTag()    {}
func (MsgParamSubPlan) ircTag()              {}
func (MsgParamSubPlanName) ircTag()          {}
func (R9K) ircTag()                          {}
func (RoomID) ircTag()                       {}
func (Slow) ircTag()                         {}
func (Subscriber) ircTag()                   {}
func (SubsOnly) ircTag()                     {}
func (SystemMsg) ircTag()                    {}
func (TargetMsgID) ircTag()                  {}
func (TargetUserID) ircTag()                 {}
func (Turbo) ircTag()                        {}
func (TmiSentTs) ircTag()                    {}
func (UserID) ircTag()                       {}
func (UserType) ircTag()                     {}
func (Unknown) ircTag()                      {}

// UserKind classifies the sender of a message.
type UserKind int

const (
	// UserNormal is a regular user ("").
	UserNormal UserKind = iota
	// UserAdmin is a Twitch administrator ("admin").
	UserAdmin
	// UserGlobalMod is a global moderator ("global_mod").
	UserGlobalMod
	// UserStaff is a Twitch employee ("staff").
	UserStaff
)

// BadgeKind names a badge. Unrecognized badge names decode to BadgeUnknown.
type BadgeKind string

const (
	BadgeAdmin       BadgeKind = "admin"
	BadgeBits        BadgeKind = "bits"
	BadgeBroadcaster BadgeKind = "broadcaster"
	BadgeModerator   BadgeKind = "moderator"
	BadgePremium     BadgeKind = "premium"
	BadgeStaff       BadgeKind = "staff"
	BadgeSubscriber  BadgeKind = "subscriber"
	BadgeTurbo       BadgeKind = "turbo"
	BadgeVip         BadgeKind = "vip"
	BadgeUnknown     BadgeKind = "unknown"
)

// Badge is one entry of the badges tag. Version is most often 1; for the
// subscriber badge it is the number of months subscribed.
type Badge struct {
	Kind    BadgeKind
	Version int
}

// TextPosition is a start and end index into the message text.
type TextPosition struct {
	Start int
	End   int
}

// Emote is an emote ID and every position it occupies in the message.
type Emote struct {
	ID        int
	Positions []TextPosition
}

// parseTags decodes a raw tag block of the form "k1=v1;k2=v2". Every key is
// kept; values that fail to decode fall back to the key's documented default.
func parseTags(rawTags string) TagSet {
	tags := make(TagSet)
	if rawTags == "" {
		return tags
	}

	for _, rawTag := range strings.Split(rawTags, ";") {
		key, value, _ := strings.Cut(rawTag, "=")
		tags[key] = decodeTag(key, value)
	}

	return tags
}

func decodeTag(key, value string) Tag {
	switch key {
	case "badge-info":
		return BadgeInfo(parseBadgeInfo(value))
	case "badges":
		return parseBadges(value)
	case "ban-duration":
		return BanDuration(parseInt(key, value, 0))
	case "client-nonce":
		return ClientNonce(value)
	case "color":
		return Color(value)
	case "display-name":
		return DisplayName(value)
	case "emote-only":
		return EmoteOnly(value == "1")
	case "emotes":
		return parseEmotes(value)
	case "emote-sets":
		return parseEmoteSets(value)
	case "first-msg":
		return FirstMsg(value == "1")
	case "followers-only":
		return FollowersOnly(parseInt(key, value, -1))
	case "id":
		return ID(value)
	case "login":
		return Login(value)
	case "mod":
		return Mod(value == "1")
	case "msg-id":
		return MsgID(value)
	case "msg-param-cumulative-months":
		return MsgParamCumulativeMonths(parseInt(key, value, 0))
	case "msg-param-months":
		return MsgParamMonths(parseInt(key, value, 0))
	case "msg-param-recipient-display-name":
		return MsgParamRecipientDisplayName(value)
	case "msg-param-recipient-id":
		return MsgParamRecipientID(value)
	case "msg-param-recipient-name":
		return MsgParamRecipientName(value)
	case "msg-param-streak-months":
		return MsgParamStreakMonths(parseInt(key, value, 0))
	case "msg-param-should-share-streak":
		return MsgParamShouldShareStreak(value == "1")
	case "msg-param-sub-plan":
		return MsgParamSubPlan(value)
	case "msg-param-sub-plan-name":
		return MsgParamSubPlanName(value)
	case "r9k":
		return R9K(value == "1")
	case "room-id":
		return RoomID(value)
	case "slow":
		return Slow(parseInt(key, value, 0))
	case "subscriber":
		return Subscriber(value == "1")
	case "subs-only":
		return SubsOnly(value == "1")
	case "system-msg":
		return SystemMsg(value)
	case "target-msg-id":
		return TargetMsgID(value)
	case "target-user-id":
		return TargetUserID(value)
	case "turbo":
		return Turbo(value == "1")
	case "tmi-sent-ts":
		return TmiSentTs(value)
	case "user-id":
		return UserID(value)
	case "user-type":
		return UserType(parseUserKind(value))
	default:
		return Unknown{}
	}
}

// parseBadgeInfo extracts the subscription length from the second "/"-segment,
// e.g. "subscriber/8" -> 8.
func parseBadgeInfo(value string) int {
	if value == "" {
		return 0
	}
	_, rest, found := strings.Cut(value, "/")
	if !found {
		return 0
	}
	months, err := strconv.Atoi(rest)
	if err != nil {
		slog.Debug("Malformed badge-info tag", "value", value)
		return 0
	}
	return months
}

func parseBadges(value string) Badges {
	badges := Badges{}
	if value == "" {
		return badges
	}

	for _, rawBadge := range strings.Split(value, ",") {
		name, rawVersion, _ := strings.Cut(rawBadge, "/")
		version, err := strconv.Atoi(rawVersion)
		if err != nil {
			version = 0
		}

		kind := BadgeKind(name)
		switch kind {
		case BadgeAdmin, BadgeBits, BadgeBroadcaster, BadgeModerator,
			BadgePremium, BadgeStaff, BadgeSubscriber, BadgeTurbo, BadgeVip:
		default:
			kind = BadgeUnknown
		}

		badges = append(badges, Badge{Kind: kind, Version: version})
	}

	return badges
}

// parseEmotes decodes "id:start-end,start-end/id:start-end". Entries that fail
// to decode are dropped rather than aborting the whole tag.
func parseEmotes(value string) Emotes {
	emotes := Emotes{}
	if value == "" {
		return emotes
	}

	for _, rawEmote := range strings.Split(value, "/") {
		rawID, rawPositions, found := strings.Cut(rawEmote, ":")
		if !found {
			slog.Debug("Malformed emote entry", "entry", rawEmote)
			continue
		}

		id, err := strconv.Atoi(rawID)
		if err != nil {
			slog.Debug("Malformed emote ID", "entry", rawEmote)
			continue
		}

		var positions []TextPosition
		for _, rawPosition := range strings.Split(rawPositions, ",") {
			rawStart, rawEnd, found := strings.Cut(rawPosition, "-")
			if !found {
				continue
			}
			start, err := strconv.Atoi(rawStart)
			if err != nil {
				continue
			}
			end, err := strconv.Atoi(rawEnd)
			if err != nil {
				continue
			}
			positions = append(positions, TextPosition{Start: start, End: end})
		}

		emotes = append(emotes, Emote{ID: id, Positions: positions})
	}

	return emotes
}

func parseEmoteSets(value string) EmoteSets {
	sets := EmoteSets{}
	if value == "" {
		return sets
	}

	for _, rawSet := range strings.Split(value, ",") {
		set, err := strconv.Atoi(rawSet)
		if err != nil {
			slog.Debug("Malformed emote set", "value", rawSet)
			continue
		}
		sets = append(sets, set)
	}

	return sets
}

func parseUserKind(value string) UserKind {
	switch strings.TrimSpace(value) {
	case "admin":
		return UserAdmin
	case "global_mod":
		return UserGlobalMod
	case "staff":
		return UserStaff
	default:
		return UserNormal
	}
}

func parseInt(key, value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Debug("Malformed numeric tag", "key", key, "value", value)
		return fallback
	}
	return n
}
