package relay

import (
	coreconfig "github.com/m3rciful/twinbots/core/config"
)

// Config is the relay bot configuration file.
type Config struct {
	coreconfig.Config `yaml:",inline"`
}

// CoreConfig exposes the shared part of the configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads and validates the relay configuration.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}
