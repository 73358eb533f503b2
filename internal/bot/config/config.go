// Package config handles configuration for the bot process, including
// defaults, JSON overlay, and command-line flags. The platform session token
// comes only from the environment; it never appears in files or flags.
package config

import (
	"os"
	"time"
)

// TokenEnv is the environment variable holding the platform session token.
const TokenEnv = "HEARTH_TOKEN"

// Config holds runtime settings for the Hearth bot.
//
// Fields:
//   - Token: platform session token, read from HEARTH_TOKEN.
//   - DatabaseDSN: SQLite database path.
//   - GatewayURL: websocket endpoint delivering platform events.
//   - APIBaseURL: REST endpoint for platform actions.
//   - OpsAddr: bind address for the health/metrics HTTP server.
//   - TickInterval: scheduler tick period; one minute in production,
//     configurable mostly for development.
type Config struct {
	Token        string
	DatabaseDSN  string
	GatewayURL   string
	APIBaseURL   string
	OpsAddr      string
	TickInterval time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "hearth.db"
	c.GatewayURL = "wss://gateway.hearth.chat/ws"
	c.APIBaseURL = "https://api.hearth.chat"
	c.OpsAddr = ":9090"
	c.TickInterval = 1 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. The token
// is read from the environment last so it can never be overridden.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.Token = os.Getenv(TokenEnv)
	return cfg
}
