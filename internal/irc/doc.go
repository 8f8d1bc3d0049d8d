// Package irc implements a parser for the Twitch IRC chat protocol.
//
// A single CRLF-delimited line decodes into a ParsedMessage holding an optional
// Source and a Command. Commands and tags are modelled as sealed interfaces with
// one concrete type per variant, so callers dispatch with a type switch. Parsing
// is total: malformed input degrades to documented defaults, never panics.
package irc
