// Package command defines the internal bot commands produced by the webhook
// pipeline and consumed by the router. This is a separate union from the IRC
// protocol commands: it describes what the bot should do, not what came over
// the wire.
package command

// Command is the sealed union of internal bot commands.
type Command interface{ botCommand() }

// StreamOnline announces that the stream just went live.
type StreamOnline struct{}

// First records which viewer claimed the "First" reward this stream.
type First struct {
	User string
}

// Timeout times out a user for the given number of seconds.
type Timeout struct {
	Seconds int
	User    string
}

// FourTwenty publishes the "420" overlay event.
type FourTwenty struct{}

// Ded publishes the "Death" overlay event.
type Ded struct{}

// Nice publishes the "Nice" overlay event.
type Nice struct{}

// Pushup adds to the pushup tally.
type Pushup struct {
	Count int
}

// Situp adds to the situp tally.
type Situp struct {
	Count int
}

// EmoteOnly enables emote-only chat for two minutes.
type EmoteOnly struct{}

// Privmsg sends a raw chat message to the channel.
type Privmsg struct {
	Text string
}

// Unsupported marks a notification the bot has no handling for.
type Unsupported struct{}

func (StreamOnline) botCommand() {}
func (First) botCommand()        {}
func (Timeout) botCommand()      {}
func (FourTwenty) botCommand()   {}
func (Ded) botCommand()          {}
func (Nice) botCommand()         {}
func (Pushup) botCommand()       {}
func (Situp) botCommand()        {}
func (EmoteOnly) botCommand()    {}
func (Privmsg) botCommand()      {}
func (Unsupported) botCommand()  {}
