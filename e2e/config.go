package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// TALKY_ADDR targets a running chat server (host:port). Empty starts an in-process stack.
	TalkyAddr string `envconfig:"TALKY_ADDR"`
	// E2E_DEBUG_JSON dumps every received frame
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
