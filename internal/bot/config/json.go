package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hearthbot/hearth/internal/flagx"
	"github.com/hearthbot/hearth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; its fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN  string         `json:"database_dsn"`
	GatewayURL   string         `json:"gateway_url"`
	APIBaseURL   string         `json:"api_base_url"`
	OpsAddr      string         `json:"ops_addr"`
	TickInterval timex.Duration `json:"tick_interval"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config command-line flags. With no flag set, nothing is loaded.
// A file that cannot be read or parsed is a startup error and panics.
// Only fields present in the file override the current values.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.GatewayURL != "" {
		config.GatewayURL = c.GatewayURL
	}
	if c.APIBaseURL != "" {
		config.APIBaseURL = c.APIBaseURL
	}
	if c.OpsAddr != "" {
		config.OpsAddr = c.OpsAddr
	}
	if c.TickInterval.Duration != 0 {
		config.TickInterval = time.Duration(c.TickInterval.Duration)
	}
}
