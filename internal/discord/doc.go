// Package discord posts announcements to a Discord channel.
package discord
