// Package report signs a user in and prints their dashboard profile for the
// command line.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/domain/types"
	"github.com/okian/skillboard/pkg/logger"
)

// Error constants.
var (
	ErrMissingCredentials = errors.New("identifier and password are required")
	ErrFormat             = errors.New("unknown report format")
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Profiler is the part of the dashboard service a report needs.
type Profiler interface {
	SignIn(ctx context.Context, identifier, password string) (service.Session, error)
	Profile(ctx context.Context, token string, req service.ProfileRequest) (types.Profile, error)
}

// Config holds one report invocation.
type Config struct {
	Identifier string
	Password   string
	Request    service.ProfileRequest
	Format     string
	Now        func() time.Time
}

// Run signs in, builds the profile and renders it to w.
func Run(ctx context.Context, p Profiler, cfg Config, w io.Writer) error {
	if strings.TrimSpace(cfg.Identifier) == "" || cfg.Password == "" {
		return ErrMissingCredentials
	}
	if cfg.Format != "" && cfg.Format != FormatText && cfg.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrFormat, cfg.Format)
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	log := logger.Get().Named("report")
	start := time.Now()

	sess, err := p.SignIn(ctx, cfg.Identifier, cfg.Password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	log.Debug(ctx, "signed in", logger.Int64("user_id", sess.Claims.UserID))

	profile, err := p.Profile(ctx, sess.Token, cfg.Request)
	if err != nil {
		return fmt.Errorf("build profile: %w", err)
	}
	log.Info(ctx, "profile built",
		logger.String("login", profile.User.Login),
		logger.Int("charts", len(profile.Skills)),
		logger.Duration("elapsed", time.Since(start)))

	if cfg.Format == FormatJSON {
		return RenderJSON(w, profile)
	}
	return RenderText(w, profile, now())
}
