// Package config provides environment-based configuration.
//
// Maps environment variables to the Config struct via caarlos0/env struct
// tags, then validates required fields, paired optional groups, and the
// encryption key format.
package config
