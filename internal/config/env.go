package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runtime holds process settings taken from the environment. They pick the
// config file and tune the host loop; gameplay settings live in Config.
type Runtime struct {
	ConfigPath string `env:"STRIDE_CONFIG_PATH" envDefault:"./resources/config.toml"`
	LogLevel   string `env:"STRIDE_LOG_LEVEL"   envDefault:"info"`
	LogFormat  string `env:"STRIDE_LOG_FORMAT"  envDefault:"console"`
	LogFile    string `env:"STRIDE_LOG_FILE"`
	TickRate   int    `env:"STRIDE_TICK_RATE"   envDefault:"60"`
	Headless   bool   `env:"STRIDE_HEADLESS"    envDefault:"false"`
}

// MaxTickRate bounds STRIDE_TICK_RATE; faster rates are below timer resolution.
const MaxTickRate = 1000

func DefaultRuntime() Runtime {
	return Runtime{
		ConfigPath: DefaultPath,
		LogLevel:   "info",
		LogFormat:  "console",
		TickRate:   60,
	}
}

// LoadRuntime parses the environment. On failure the defaults are returned
// alongside the error.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return DefaultRuntime(), fmt.Errorf("parse env: %w", err)
	}
	if rt.TickRate <= 0 || rt.TickRate > MaxTickRate {
		return DefaultRuntime(), fmt.Errorf("parse env: STRIDE_TICK_RATE must be in 1..%d, got %d", MaxTickRate, rt.TickRate)
	}
	return rt, nil
}
