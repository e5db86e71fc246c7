// Package config loads chartbridge settings from defaults, an optional YAML file and
// CHARTBRIDGE_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/robbyt/go-chartbridge/bridge"
)

// Engine names.
const (
	EngineStarlark = "starlark"
	EngineRisor    = "risor"
	EngineExtism   = "extism"
)

// JSON helper modes.
const (
	JSONHelperAuto = "auto"
	JSONHelperOn   = "on"
	JSONHelperOff  = "off"
)

// Config is the full runtime configuration.
type Config struct {
	Engine     string   `koanf:"engine"      validate:"required,oneof=starlark risor extism"`
	Role       string   `koanf:"role"        validate:"required,oneof=Params JavaScript UI Urls"`
	JSONHelper string   `koanf:"json_helper" validate:"oneof=auto on off"`
	Limits     Limits   `koanf:"limits"`
	Log        Log      `koanf:"log"`
	Markdown   Markdown `koanf:"markdown"`
	Extism     Extism   `koanf:"extism"`
	Metrics    Metrics  `koanf:"metrics"`
}

// Limits bound one evaluation.
type Limits struct {
	// MaxSteps is the Starlark step budget. Zero means unlimited.
	MaxSteps uint64        `koanf:"max_steps"`
	Timeout  time.Duration `koanf:"timeout"   validate:"gte=0"`
}

type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type Markdown struct {
	CacheSize int `koanf:"cache_size" validate:"gte=1"`
}

type Extism struct {
	EntryPoint string `koanf:"entry_point" validate:"required"`
	WASI       bool   `koanf:"wasi"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Engine:     EngineStarlark,
		Role:       string(bridge.RoleJavaScript),
		JSONHelper: JSONHelperAuto,
		Limits: Limits{
			MaxSteps: 1_000_000,
			Timeout:  5 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
		Markdown: Markdown{
			CacheSize: 128,
		},
		Extism: Extism{
			EntryPoint: "run",
		},
	}
}

// ParsedRole returns Role as a bridge.Role.
func (c *Config) ParsedRole() (bridge.Role, error) {
	return bridge.ParseRole(c.Role)
}

// JSONHelperOverride reports the forced JSON helper flag. ok is false in auto mode, where the
// role decides.
func (c *Config) JSONHelperOverride() (enabled, ok bool) {
	switch c.JSONHelper {
	case JSONHelperOn:
		return true, true
	case JSONHelperOff:
		return false, true
	default:
		return false, false
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("config.Config{Engine: %s, Role: %s}", c.Engine, c.Role)
}
