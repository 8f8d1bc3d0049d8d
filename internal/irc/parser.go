package irc

import (
	"strconv"
	"strings"
)

// Parse decodes a single IRC line into a ParsedMessage. It never panics: any
// fragment it cannot interpret degrades to a documented default, and verbs it
// does not recognize decode to Unsupported.
func Parse(line string) ParsedMessage {
	rest := line

	// Tag block: "@key=value;..." up to the first space.
	rawTags := ""
	if strings.HasPrefix(rest, "@") {
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rawTags = rest[1:end]
			rest = rest[end+1:]
		} else {
			rawTags = rest[1:]
			rest = ""
		}
	}

	// Source block: ":nick!host" or ":host" up to the next space.
	var source *Source
	if strings.HasPrefix(rest, ":") {
		rawSource := ""
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rawSource = rest[1:end]
			rest = rest[end+1:]
		} else {
			rawSource = rest[1:]
			rest = ""
		}
		src := parseSource(rawSource)
		source = &src
	}

	command := parseCommand(rest, rawTags)

	// The whisper sender is only present in the source prefix.
	if whisper, ok := command.(Whisper); ok && source != nil {
		whisper.FromUser = source.Nick
		command = whisper
	}

	return ParsedMessage{Source: source, Command: command}
}

// parseSource splits "nick!host" on the first "!". A source without "!" is a
// server host with no nickname.
func parseSource(rawSource string) Source {
	nick, host, found := strings.Cut(rawSource, "!")
	if !found {
		return Source{Host: rawSource}
	}
	return Source{Nick: nick, Host: host}
}

// parseCommand decodes the command segment of a line. The channel is the text
// between the first "#" and the trailing-parameter ":", the parameter blob is
// everything after the first ":" (spaces do not delimit there), and the verb
// is the first field before the channel marker.
func parseCommand(rawCommand, rawTags string) Command {
	paramsIndex := strings.IndexByte(rawCommand, ':')
	if paramsIndex < 0 {
		paramsIndex = len(rawCommand)
	}

	// Only a "#" before the trailing parameters marks a channel.
	channelIndex := strings.IndexByte(rawCommand[:paramsIndex], '#')
	if channelIndex < 0 {
		channelIndex = paramsIndex
	}

	channel := ""
	if channelIndex != paramsIndex {
		channel = strings.TrimSpace(rawCommand[channelIndex+1 : paramsIndex])
	}

	parameters := ""
	if paramsIndex != len(rawCommand) {
		parameters = strings.TrimSpace(rawCommand[paramsIndex+1:])
	}

	fields := strings.Fields(rawCommand[:channelIndex])
	if len(fields) == 0 {
		return Unsupported{}
	}
	verb := fields[0]

	var tags TagSet
	if rawTags != "" {
		tags = parseTags(rawTags)
	}

	switch verb {
	case "JOIN":
		return Join{Channel: channel}
	case "PART":
		return Part{Channel: channel}
	case "NOTICE":
		return Notice{Channel: channel, Message: parameters, Tags: tags}
	case "CLEARCHAT":
		return ClearChat{Channel: channel, User: parameters, Tags: tags}
	case "CLEARMSG":
		return ClearMsg{Channel: channel, Message: parameters, Tags: tags}
	case "GLOBALUSERSTATE":
		return GlobalUserState{Tags: tags}
	case "HOSTTARGET":
		target, rawViewers, _ := strings.Cut(parameters, " ")
		viewers, err := strconv.Atoi(strings.TrimSpace(rawViewers))
		if err != nil {
			viewers = 0
		}
		return HostTarget{HostingChannel: channel, Channel: target, Viewers: viewers}
	case "PING":
		return Ping{}
	case "PRIVMSG":
		return Privmsg{
			Channel:    channel,
			Message:    parameters,
			BotCommand: parseBotCommand(parameters),
			Tags:       tags,
		}
	case "RECONNECT":
		return Reconnect{}
	case "ROOMSTATE":
		return RoomState{Channel: channel, Tags: tags}
	case "USERNOTICE":
		return UserNotice{Channel: channel, Message: parameters, Tags: tags}
	case "USERSTATE":
		return UserState{Channel: channel, Tags: tags}
	case "CAP":
		ack := false
		for _, field := range fields[1:] {
			if field == "ACK" {
				ack = true
			}
		}
		return Cap{Ack: ack}
	case "WHISPER":
		toUser := ""
		if len(fields) > 1 {
			toUser = fields[1]
		}
		return Whisper{ToUser: toUser, Message: parameters}
	default:
		if code, err := strconv.Atoi(verb); err == nil {
			return Numeric{Code: code, Message: parameters}
		}
		return Unsupported{Raw: verb}
	}
}

// parseBotCommand extracts a "!command param param" invocation from a PRIVMSG
// payload. A lone "!" or a "!" followed by a space is not a command.
func parseBotCommand(rawMessage string) *BotCommand {
	message := strings.TrimSpace(rawMessage)

	if message == "" {
		return nil
	}
	if message[0] != '!' {
		return nil
	}

	message = message[1:]
	if message == "" || message[0] == ' ' {
		return nil
	}

	command, rest, found := strings.Cut(message, " ")
	if !found {
		return &BotCommand{Command: message, Parameters: []string{}}
	}

	return &BotCommand{Command: command, Parameters: strings.Split(rest, " ")}
}
