package config

import (
	"flag"
	"os"
	"time"

	"github.com/hearthbot/hearth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   SQLite database path (e.g., "hearth.db")
//	-g string   gateway websocket URL
//	-a string   platform REST API base URL
//	-o string   ops HTTP bind address (e.g., ":9090")
//	-t int      scheduler tick interval, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON loader.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-g", "-a", "-o", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database path")
	fs.StringVar(&config.GatewayURL, "g", config.GatewayURL, "gateway websocket URL")
	fs.StringVar(&config.APIBaseURL, "a", config.APIBaseURL, "platform API base URL")
	fs.StringVar(&config.OpsAddr, "o", config.OpsAddr, "ops HTTP bind address")

	tickInterval := fs.Int("t", int(config.TickInterval.Seconds()), "tick interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TickInterval = time.Duration(*tickInterval) * time.Second
}
