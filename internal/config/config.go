// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file, an optional .env file and SKILLBOARD_ env
//   vars on top of the defaults and validates the result.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
	_ "time/tzdata" // timezone lookups must not depend on the host's zoneinfo
)

// SkillGroup is a named allow list of skills rendered as one radar chart.
type SkillGroup struct {
	Title  string   `koanf:"title"`
	Skills []string `koanf:"skills"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// GraphQLURL is the platform's GraphQL endpoint.
	GraphQLURL string `koanf:"graphql_url"`

	// SigninURL is the platform's basic-auth signin endpoint.
	SigninURL string `koanf:"signin_url"`

	// RequestTimeoutMS bounds every upstream call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// SessionCookie names the cookie carrying the platform token.
	SessionCookie string `koanf:"session_cookie"`

	// CookieSecure marks session cookies Secure (enable behind TLS).
	CookieSecure bool `koanf:"cookie_secure"`

	// SigninRatePerMinute caps sign-in attempts per client IP; 0 disables
	// limiting. SigninBurst is the number of attempts allowed at once.
	SigninRatePerMinute int `koanf:"signin_rate_per_minute"`
	SigninBurst         int `koanf:"signin_burst"`

	// Timezone is the IANA zone dates are rendered in.
	Timezone string `koanf:"timezone"`

	// TopSkills caps the unfiltered skill ranking.
	TopSkills int `koanf:"top_skills"`

	// ProjectPathPrefix is stripped from progress paths for display.
	ProjectPathPrefix string `koanf:"project_path_prefix"`

	// SkillGroups maps a group key to its chart title and allow list.
	SkillGroups map[string]SkillGroup `koanf:"skill_groups"`

	// OverviewGroups and ExpandedGroups list the group keys shown on the
	// profile page in its default and expanded views.
	OverviewGroups []string `koanf:"overview_groups"`
	ExpandedGroups []string `koanf:"expanded_groups"`

	// MetricsEnabled switches Prometheus recording on /healthz.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is the runtime sampling period.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsLabels are constant labels added to every series (YAML only).
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsBuckets overrides the latency histogram buckets, in
	// milliseconds (YAML only). Empty keeps the built-in buckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		GraphQLURL:          "https://learn.reboot01.com/api/graphql-engine/v1/graphql",
		SigninURL:           "https://learn.reboot01.com/api/auth/signin",
		RequestTimeoutMS:    10_000,
		SessionCookie:       "skillboard_token",
		CookieSecure:        false,
		SigninRatePerMinute: 10,
		SigninBurst:         5,
		Timezone:            "UTC",
		TopSkills:           8,
		ProjectPathPrefix:   "/bahrain/bh-module/",
		SkillGroups: map[string]SkillGroup{
			"overview": {
				Title:  "Best skills",
				Skills: []string{"prog", "go", "back-end", "front-end", "js", "html"},
			},
			"programming": {
				Title:  "Programming Skills",
				Skills: []string{"prog", "algo", "game", "stats", "tcp", "back-end", "front-end"},
			},
			"technology": {
				Title:  "Technology Skills",
				Skills: []string{"go", "js", "html", "css", "sql", "docker", "unix"},
			},
		},
		OverviewGroups:   []string{"overview"},
		ExpandedGroups:   []string{"programming", "technology"},
		MetricsEnabled:   true,
		MetricsRefreshMS: 10_000,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
