package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted before the SKILLBOARD_ keys themselves.
const (
	envPrefix  = "SKILLBOARD_"
	envConfig  = "SKILLBOARD_CONFIG"
	envDotFile = "SKILLBOARD_ENV_FILE"
	defaultEnv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SKILLBOARD_CONFIG is set
//  3. env (prefix SKILLBOARD_), after loading SKILLBOARD_ENV_FILE or ./.env
//     into the process environment without overriding variables already set
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Map env keys like SKILLBOARD_TOP_SKILLS -> top_skills (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if path := os.Getenv(envDotFile); path != "" {
		return godotenv.Load(path)
	}
	if _, err := os.Stat(defaultEnv); err == nil {
		return godotenv.Load(defaultEnv)
	}
	return nil
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if err := validURL("graphql_url", c.GraphQLURL); err != nil {
		errs = append(errs, err)
	}
	if err := validURL("signin_url", c.SigninURL); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeoutMS <= 0 {
		errs = append(errs, errors.New("request_timeout_ms must be positive"))
	}
	if c.SigninRatePerMinute < 0 || c.SigninBurst < 0 {
		errs = append(errs, errors.New("signin_rate_per_minute and signin_burst must not be negative"))
	}
	if c.MetricsRefreshMS <= 0 {
		errs = append(errs, errors.New("metrics_refresh_ms must be positive"))
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			errs = append(errs, errors.New("metrics_buckets must be strictly increasing"))
			break
		}
	}
	if c.SessionCookie == "" {
		errs = append(errs, errors.New("session_cookie must not be empty"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	for _, key := range append(append([]string(nil), c.OverviewGroups...), c.ExpandedGroups...) {
		if _, ok := c.SkillGroups[key]; !ok {
			errs = append(errs, fmt.Errorf("unknown skill group %q", key))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", key)
	}
	return nil
}
