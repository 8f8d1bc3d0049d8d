// Package twitch wraps the Helix REST API for the small set of calls the bot
// needs: current stream metadata for the online announcement.
package twitch
