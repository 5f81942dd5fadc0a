package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/skillboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TopSkills, convey.ShouldEqual, 8)
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 10_000)
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKILLBOARD_ADDR", ":8080")
			_ = os.Setenv("SKILLBOARD_TOP_SKILLS", "5")
			_ = os.Setenv("SKILLBOARD_REQUEST_TIMEOUT_MS", "2500")
			_ = os.Setenv("SKILLBOARD_COOKIE_SECURE", "true")
			_ = os.Setenv("SKILLBOARD_TIMEZONE", "Asia/Bahrain")
			_ = os.Setenv("SKILLBOARD_SIGNIN_BURST", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopSkills, convey.ShouldEqual, 5)
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.CookieSecure, convey.ShouldBeTrue)
				convey.So(cfg.Timezone, convey.ShouldEqual, "Asia/Bahrain")
				convey.So(cfg.SigninBurst, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
graphql_url: "http://platform.test/graphql"
signin_url: "http://platform.test/signin"
top_skills: 6
skill_groups:
  backend:
    title: "Back-end"
    skills: ["go", "sql", "docker"]
overview_groups: ["backend"]
metrics_enabled: false
metrics_labels:
  campus: "bahrain"
metrics_buckets: [5, 50, 500]
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.GraphQLURL, convey.ShouldEqual, "http://platform.test/graphql")
				convey.So(cfg.TopSkills, convey.ShouldEqual, 6)
				convey.So(cfg.OverviewGroups, convey.ShouldResemble, []string{"backend"})
				convey.So(cfg.SkillGroups["backend"].Skills, convey.ShouldResemble, []string{"go", "sql", "docker"})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"campus": "bahrain"})
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{5, 50, 500})
			})

			convey.Convey("And default groups should still be present", func() {
				convey.So(cfg.SkillGroups, convey.ShouldContainKey, "technology")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
top_skills: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLBOARD_CONFIG", tmpFile)
			_ = os.Setenv("SKILLBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080") // Overridden by env
				convey.So(cfg.TopSkills, convey.ShouldEqual, 6)  // From file
			})
		})

		convey.Convey("When loading config from a dotenv file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "skillboard.env")
			convey.So(os.WriteFile(path, []byte("SKILLBOARD_ADDR=:7070\nSKILLBOARD_LOG_LEVEL=debug\n"), 0o600), convey.ShouldBeNil)

			_ = os.Setenv("SKILLBOARD_ENV_FILE", path)
			_ = os.Setenv("SKILLBOARD_LOG_LEVEL", "warn")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then dotenv values should apply without overriding the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("SKILLBOARD_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SKILLBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SKILLBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SKILLBOARD_TOP_SKILLS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation edge cases", t, func() {
		convey.Convey("When the GraphQL URL is relative", func() {
			cfg := config.New()
			cfg.GraphQLURL = "/graphql"

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "graphql_url")
			})
		})

		convey.Convey("When the timeout is not positive", func() {
			cfg := config.New()
			cfg.RequestTimeoutMS = 0

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg := config.New()
			cfg.Timezone = "Mars/Olympus_Mons"

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "timezone")
			})
		})

		convey.Convey("When a view references an unknown group", func() {
			cfg := config.New()
			cfg.ExpandedGroups = []string{"programming", "design"}

			convey.Convey("Then validation should name the group", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"design"`)
			})
		})

		convey.Convey("When the sign-in rate is negative", func() {
			cfg := config.New()
			cfg.SigninRatePerMinute = -1

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "signin_rate_per_minute")
			})
		})

		convey.Convey("When metrics buckets are out of order", func() {
			cfg := config.New()
			cfg.MetricsBuckets = []float64{10, 5}
			cfg.MetricsRefreshMS = 0

			convey.Convey("Then both metrics problems are reported", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_buckets must be strictly increasing")
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_refresh_ms must be positive")
			})
		})

		convey.Convey("When sign-in limiting is disabled", func() {
			cfg := config.New()
			cfg.SigninRatePerMinute = 0

			convey.Convey("Then the config is still valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When several fields are wrong", func() {
			cfg := config.New()
			cfg.Addr = ""
			cfg.SessionCookie = ""

			convey.Convey("Then every problem should be reported", func() {
				err := cfg.Validate()
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(err.Error(), convey.ShouldContainSubstring, "session_cookie must not be empty")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SKILLBOARD_CONFIG",
		"SKILLBOARD_ENV_FILE",
		"SKILLBOARD_ADDR",
		"SKILLBOARD_LOG_LEVEL",
		"SKILLBOARD_TOP_SKILLS",
		"SKILLBOARD_REQUEST_TIMEOUT_MS",
		"SKILLBOARD_COOKIE_SECURE",
		"SKILLBOARD_TIMEZONE",
		"SKILLBOARD_SIGNIN_BURST",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "skillboard-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
