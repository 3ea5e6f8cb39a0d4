package tracker

import (
	"fmt"

	"loca2-asset-tracker/internal/logging"
)

// Polling bounds enforced by Validate.
const (
	defaultInterval = 30
	minInterval     = 10
	maxInterval     = 300

	defaultTimeout = 10
	minTimeout     = 1
	maxTimeout     = 120

	defaultFailureThreshold = 3
)

type Config struct {
	Loca struct {
		Endpoint string `mapstructure:"endpoint"`
		Account  string `mapstructure:"account"`
		Password string `mapstructure:"password"`
		Timeout  int    `mapstructure:"timeout"`
	} `mapstructure:"loca"`
	Poll struct {
		Interval         int `mapstructure:"interval"`
		FailureThreshold int `mapstructure:"failure_threshold"`
	} `mapstructure:"poll"`
	Http struct {
		ServerName string `mapstructure:"server_name"`
		Listen     string `mapstructure:"listen"`
		BasicAuth  bool   `mapstructure:"basic_auth"`
		Users      []struct {
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
		} `mapstructure:"users"`
	} `mapstructure:"http"`
	Nats struct {
		Url     string `mapstructure:"url"`
		Subject string `mapstructure:"subject"`
	} `mapstructure:"nats"`
	Db struct {
		Driver string `mapstructure:"driver"`
		Debug  bool   `mapstructure:"debug"`
		Mysql  struct {
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
			Host     string `mapstructure:"host"`
			Database string `mapstructure:"database"`
		} `mapstructure:"mysql"`
	} `mapstructure:"db"`
	Log logging.Config `mapstructure:"log"`
}

// Validate fills defaults and clamps the polling interval and request
// timeout to their supported ranges. Clamped settings are reported as
// warnings for the caller to log; an error is returned only for settings
// that have no usable fallback.
func (c *Config) Validate() ([]string, error) {
	if c.Loca.Account == "" || c.Loca.Password == "" {
		return nil, fmt.Errorf("missing loca account or password")
	}

	var warnings []string

	if c.Poll.Interval == 0 {
		c.Poll.Interval = defaultInterval
	}
	if clamped := clamp(c.Poll.Interval, minInterval, maxInterval); clamped != c.Poll.Interval {
		warnings = append(warnings, fmt.Sprintf(
			"poll interval %ds out of range, clamped to %ds", c.Poll.Interval, clamped))
		c.Poll.Interval = clamped
	}

	if c.Poll.FailureThreshold <= 0 {
		c.Poll.FailureThreshold = defaultFailureThreshold
	}

	if c.Loca.Timeout == 0 {
		c.Loca.Timeout = defaultTimeout
	}
	if clamped := clamp(c.Loca.Timeout, minTimeout, maxTimeout); clamped != c.Loca.Timeout {
		warnings = append(warnings, fmt.Sprintf(
			"request timeout %ds out of range, clamped to %ds", c.Loca.Timeout, clamped))
		c.Loca.Timeout = clamped
	}

	if c.Nats.Url != "" && c.Nats.Subject == "" {
		c.Nats.Subject = "loca.positions"
	}

	return warnings, nil
}

func clamp(v int, min int, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
