// Package database provides PostgreSQL connectivity and repositories.
//
// Uses pgx for connection pooling. Repositories cover the bot's persistent
// state: OAuth tokens (encrypted at rest) and reward claims that must survive
// restarts.
package database
