package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/skillboard/internal/adapters/platform"
	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/config"
	"github.com/okian/skillboard/internal/report"
	"github.com/okian/skillboard/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultTimeout    = 30 * time.Second
	logFilePermission = 0o600
	envIdentifier     = "SKILLBOARD_IDENTIFIER"
	envPassword       = "SKILLBOARD_PASSWORD"
)

// profilerFactory builds the service a report runs against.
type profilerFactory func(cfg *config.Config) (report.Profiler, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, newProfiler); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes the command once and reports any failure on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory profilerFactory) error {
	cmd := newRootCmd(factory)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "profile-report:", err)
		return err
	}
	return nil
}

func newProfiler(cfg *config.Config) (report.Profiler, error) {
	opts, err := service.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := platform.New(cfg.GraphQLURL, cfg.SigninURL, platform.WithTimeout(cfg.RequestTimeout()))
	return service.New(append(opts, service.WithPlatform(client))...), nil
}

func newRootCmd(factory profilerFactory) *cobra.Command {
	var (
		identifier string
		password   string
		view       string
		group      string
		skills     string
		limit      int
		asJSON     bool
		logFile    string
		verbose    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "profile-report",
		Short: "Print a learning platform profile",
		Long: `Signs in to the learning platform and prints the same profile the
dashboard renders: personal details, audit ratio, ranked skills and the
latest project.

Credentials may also come from SKILLBOARD_IDENTIFIER and SKILLBOARD_PASSWORD.
Platform URLs and skill groups are read from the server configuration
(SKILLBOARD_CONFIG, .env, SKILLBOARD_* variables).

Example:
  profile-report --identifier alice --group technology
  profile-report --identifier alice --skills go,js,sql --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := setupLogging(cmd.ErrOrStderr(), logFile, verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			p, err := factory(cfg)
			if err != nil {
				return err
			}

			format := report.FormatText
			if asJSON {
				format = report.FormatJSON
			}
			rc := report.Config{
				Identifier: firstNonEmpty(identifier, os.Getenv(envIdentifier)),
				Password:   firstNonEmpty(password, os.Getenv(envPassword)),
				Request: service.ProfileRequest{
					View:   view,
					Group:  group,
					Skills: splitList(skills),
					Limit:  limit,
				},
				Format: format,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return report.Run(ctx, p, rc, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&identifier, "identifier", "u", "", "username or email")
	f.StringVarP(&password, "password", "p", "", "password")
	f.StringVar(&view, "view", "", "chart set: overview or expanded")
	f.StringVarP(&group, "group", "g", "", `single skill group, or "top"`)
	f.StringVarP(&skills, "skills", "s", "", "comma separated skill allow-list")
	f.IntVarP(&limit, "limit", "n", 0, "size of the top skills chart")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of text")
	f.StringVar(&logFile, "log", "", "append logs to this file")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	f.DurationVar(&timeout, "timeout", defaultTimeout, "overall deadline")
	return cmd
}

// setupLogging sends logs to file when given, otherwise only warnings and
// errors reach stderr so the report stays readable.
func setupLogging(stderr io.Writer, file string, verbose bool) (func(), error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	if file == "" {
		return func() {}, logger.Init(logger.WithWriter(stderr), logger.WithLevel(level))
	}
	fh, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if !verbose {
		level = "info"
	}
	if err := logger.Init(logger.WithWriter(fh), logger.WithLevel(level)); err != nil {
		_ = fh.Close()
		return nil, err
	}
	return func() { _ = fh.Close() }, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
