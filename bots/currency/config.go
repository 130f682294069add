package currency

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/twinbots/bots/currency/rates"
	coreconfig "github.com/m3rciful/twinbots/core/config"

	"github.com/robfig/cron/v3"
)

// RatesConfig controls the rate feed and cache.
type RatesConfig struct {
	FeedURL      string        `yaml:"feed_url" envconfig:"RATES_FEED_URL"`
	TTL          time.Duration `yaml:"ttl" envconfig:"RATES_TTL"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"RATES_FETCH_TIMEOUT"`
	// RefreshSchedule is a cron spec for background refreshes; "off" disables them.
	RefreshSchedule string   `yaml:"refresh_schedule" envconfig:"RATES_REFRESH_SCHEDULE"`
	Base            string   `yaml:"base" envconfig:"RATES_BASE"`
	Supported       []string `yaml:"supported" envconfig:"RATES_SUPPORTED"`
}

// Config is the currency bot configuration file.
type Config struct {
	coreconfig.Config `yaml:",inline"`
	Rates             RatesConfig `yaml:"rates"`
}

// CoreConfig exposes the shared part of the configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// ScheduleOff disables the background refresh.
const ScheduleOff = "off"

// LoadConfig reads and validates the currency configuration.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalizeRates(&cfg.Rates); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeRates(rc *RatesConfig) error {
	if rc.TTL < 0 {
		return fmt.Errorf("rates.ttl must be >= 0")
	}
	if rc.FetchTimeout < 0 {
		return fmt.Errorf("rates.fetch_timeout must be >= 0")
	}
	if strings.TrimSpace(rc.FeedURL) == "" {
		rc.FeedURL = rates.DefaultFeedURL
	}

	rc.Base = strings.ToUpper(strings.TrimSpace(rc.Base))
	if rc.Base == "" {
		rc.Base = "RUB"
	}
	if len(rc.Supported) == 0 {
		rc.Supported = append([]string(nil), rates.DefaultCurrencies...)
	}
	seen := make(map[string]bool, len(rc.Supported))
	codes := rc.Supported[:0]
	for _, code := range rc.Supported {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 3 {
			return fmt.Errorf("rates.supported: invalid currency code %q", code)
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	if !seen[rc.Base] {
		return fmt.Errorf("rates.supported must include the base currency %s", rc.Base)
	}
	rc.Supported = codes

	sched := strings.TrimSpace(rc.RefreshSchedule)
	switch {
	case sched == "":
		rc.RefreshSchedule = rates.DefaultSchedule
	case strings.EqualFold(sched, ScheduleOff):
		rc.RefreshSchedule = ScheduleOff
	default:
		if _, err := cron.ParseStandard(sched); err != nil {
			return fmt.Errorf("rates.refresh_schedule %q: %w", sched, err)
		}
		rc.RefreshSchedule = sched
	}
	return nil
}
