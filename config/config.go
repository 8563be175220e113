// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — Gateway configuration (JSON file + CLI override)
//
// Purpose:
//   - Loads the optional JSON config file and normalizes every value.
//   - Parses the CLI port argument with the historical fallback behavior.
//
// Notes:
//   - Absent file, unreadable file, or malformed JSON all degrade to the
//     compiled-in defaults with a warning; startup never fails on config.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"os"

	"github.com/sugawarayuuta/sonnet"

	"main/constants"
	"main/debug"
	"main/utils"
)

// Config is the runtime tuning surface of the gateway.
type Config struct {
	Port           int    `json:"port"`           // TCP listening port
	Workers        int    `json:"workers"`        // pool size; 0 = hardware parallelism
	BufferCapacity int    `json:"bufferCapacity"` // per-direction ring bytes
	JournalPath    string `json:"journalPath"`    // session journal database; "" disables
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Port:           constants.DefaultPort,
		Workers:        0,
		BufferCapacity: constants.BufferCapacity,
	}
}

// Load reads path and merges it over the defaults. Every invalid value is
// individually replaced by its default.
func Load(path string) Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // optional file
	}
	if err := sonnet.Unmarshal(data, &cfg); err != nil {
		debug.DropError("config parse", err)
		return Default()
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		debug.DropMessage("CONFIG", "invalid port "+utils.Itoa(cfg.Port)+", using "+utils.Itoa(constants.DefaultPort))
		cfg.Port = constants.DefaultPort
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = constants.BufferCapacity
	}
	return cfg
}

// ParsePort interprets the CLI port argument. Non-numeric or out-of-range
// input warns and falls back to the default port.
func ParsePort(arg string) int {
	v, ok := utils.ParseDecimal([]byte(arg))
	if !ok || v == 0 || v > 65535 {
		debug.DropMessage("CONFIG", "invalid port argument '"+arg+"', using "+utils.Itoa(constants.DefaultPort))
		return constants.DefaultPort
	}
	return int(v)
}
