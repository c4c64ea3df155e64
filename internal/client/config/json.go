package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Pointer fields distinguish "absent" from "zero" so a partial file only
// overrides what it names.
type JsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DataDir        *string         `json:"data_dir"`
	LogLevel       *string         `json:"log_level"`
	MetricsAddr    *string         `json:"metrics_addr"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config in args. Without such a flag it does nothing.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
}
