package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting a command may read. Values come from flags,
// ALMANAC_* environment variables and the config file, in that order of
// precedence.
type Config struct {
	Mode    string
	Workers int
	Output  string
	Trace   bool
	Watch   bool
	Fetch   FetchConfig
}

type FetchConfig struct {
	Cookies   string
	Session   string
	UserAgent string
	Referer   string
	Interval  time.Duration
	Timeout   time.Duration
	Retries   uint64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", _defaultMode)
	v.SetDefault("workers", 0)
	v.SetDefault("output", _defaultOutput)
	v.SetDefault("fetch.cookies", _defaultCookiesFile)
	v.SetDefault("fetch.interval", _defaultFetchInterval)
	v.SetDefault("fetch.timeout", _defaultFetchTimeout)
	v.SetDefault("fetch.retries", _defaultRetries)
}

func decodeConfig(v *viper.Viper) (Config, error) {
	c := Config{
		Mode:    v.GetString("mode"),
		Workers: v.GetInt("workers"),
		Output:  v.GetString("output"),
		Trace:   v.GetBool("trace"),
		Watch:   v.GetBool("watch"),
		Fetch: FetchConfig{
			Cookies:   v.GetString("fetch.cookies"),
			Session:   v.GetString("fetch.session"),
			UserAgent: v.GetString("fetch.user-agent"),
			Referer:   v.GetString("fetch.referer"),
			Interval:  v.GetDuration("fetch.interval"),
			Timeout:   v.GetDuration("fetch.timeout"),
			Retries:   uint64(v.GetInt64("fetch.retries")),
		},
	}

	switch {
	case c.Workers < 0:
		return c, fmt.Errorf("workers must not be negative, got %v", c.Workers)
	case c.Fetch.Interval < 0:
		return c, fmt.Errorf("fetch interval must not be negative, got %v", c.Fetch.Interval)
	case v.GetInt64("fetch.retries") < 0:
		return c, fmt.Errorf("fetch retries must not be negative")
	}
	switch c.Output {
	case "text", "yaml", "json":
	default:
		return c, fmt.Errorf("unknown output format %q", c.Output)
	}
	return c, nil
}
