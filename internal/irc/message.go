package irc

// ParsedMessage is the parser's sole output, one per input line.
type ParsedMessage struct {
	Source  *Source
	Command Command
}

// Source identifies the sender of a message. Nick is empty when the source
// has no "!"-separated nickname part (server-originated messages).
type Source struct {
	Nick string
	Host string
}

// BotCommand is extracted from PRIVMSG payloads that begin with "!" directly
// followed by the command word. Parameters are the remaining space-delimited
// words, possibly empty.
type BotCommand struct {
	Command    string
	Parameters []string
}

// Command is the sealed union of protocol verbs. Each variant carries only the
// fields its wire format provides.
type Command interface{ ircCommand() }

// Join is sent when a user joins the chat room.
//
// Prototype: `:<user>!<user>@<user>.tmi.twitch.tv JOIN #<channel>`
type Join struct {
	Channel string
}

// Part is sent when a user leaves the chat room.
//
// Prototype: `:<user>!<user>@<user>.tmi.twitch.tv PART #<channel>`
type Part struct {
	Channel string
}

// Notice indicates the outcome of an action like banning a user.
//
// Prototype: `:tmi.twitch.tv NOTICE #<channel> :<message>`
type Notice struct {
	Channel string
	Message string
	Tags    TagSet
}

// ClearChat is sent when a moderator removes all messages from the chat room,
// or all messages of one user. User is empty when the whole room was cleared.
//
// Prototype: `:tmi.twitch.tv CLEARCHAT #<channel> :<user>`
type ClearChat struct {
	Channel string
	User    string
	Tags    TagSet
}

// ClearMsg is sent when a single message is deleted from the chat room.
//
// Prototype: `:tmi.twitch.tv CLEARMSG #<channel> :<message>`
type ClearMsg struct {
	Channel string
	Message string
	Tags    TagSet
}

// HostTarget is sent when a channel starts or stops hosting another channel.
// Channel is "-" when hosting stops.
//
// Prototype: `:tmi.twitch.tv HOSTTARGET #<hosting-channel> :[-|<channel>] <number-of-viewers>`
type HostTarget struct {
	HostingChannel string
	Channel        string
	Viewers        int
}

// Privmsg is a regular chat message. BotCommand is non-nil when the message
// text is a "!command" invocation.
type Privmsg struct {
	Channel    string
	Message    string
	BotCommand *BotCommand
	Tags       TagSet
}

// Ping is the server keepalive probe. Reply with PONG.
type Ping struct{}

// Cap is the reply to a capability request. Ack reports whether the request
// was acknowledged.
type Cap struct {
	Ack bool
}

// GlobalUserState is sent after the bot successfully authenticates.
//
// Prototype: `:tmi.twitch.tv GLOBALUSERSTATE`
type GlobalUserState struct {
	Tags TagSet
}

// UserNotice is sent on events like subscriptions, resubs and raids. Message
// is empty when the event carries no chat message.
//
// Prototype: `:tmi.twitch.tv USERNOTICE #<channel> :[<message>]`
type UserNotice struct {
	Channel string
	Message string
	Tags    TagSet
}

// UserState is sent when the bot joins a channel or sends a PRIVMSG.
//
// Prototype: `:tmi.twitch.tv USERSTATE #<channel>`
type UserState struct {
	Channel string
	Tags    TagSet
}

// RoomState is sent when the bot joins a channel or the channel's chat
// settings change.
//
// Prototype: `:tmi.twitch.tv ROOMSTATE #<channel>`
type RoomState struct {
	Channel string
	Tags    TagSet
}

// Reconnect is sent when the server is about to terminate the connection for
// maintenance. The client should reconnect and rejoin its channels.
//
// Prototype: `:tmi.twitch.tv RECONNECT`
type Reconnect struct{}

// Whisper is a private message directed specifically at the bot.
//
// Prototype: `:<from>!<from>@<from>.tmi.twitch.tv WHISPER <to> :<message>`
type Whisper struct {
	FromUser string
	ToUser   string
	Message  string
}

// Numeric is a numeric reply such as 001 (welcome) or 353 (names list).
type Numeric struct {
	Code    int
	Message string
}

// Unsupported is any verb the parser does not understand. Raw preserves the
// unrecognized verb token for logging.
type Unsupported struct {
	Raw string
}

func (Join) ircCommand()            {}
func (Part) ircCommand()            {}
func (Notice) ircCommand()          {}
func (ClearChat) ircCommand()       {}
func (ClearMsg) ircCommand()        {}
func (HostTarget) ircCommand()      {}
func (Privmsg) ircCommand()         {}
func (Ping) ircCommand()            {}
func (Cap) ircCommand()             {}
func (GlobalUserState) ircCommand() {}
func (UserNotice) ircCommand()      {}
func (UserState) ircCommand()       {}
func (RoomState) ircCommand()       {}
func (Reconnect) ircCommand()       {}
func (Whisper) ircCommand()         {}
func (Numeric) ircCommand()         {}
func (Unsupported) ircCommand()     {}
