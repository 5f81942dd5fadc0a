// Package service provides the dashboard service used by the HTML pages,
// the JSON API and the report CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/skillboard/internal/adapters/platform"
	"github.com/okian/skillboard/internal/domain/insights"
	"github.com/okian/skillboard/internal/domain/model"
	"github.com/okian/skillboard/internal/domain/session"
	"github.com/okian/skillboard/internal/domain/types"
	"github.com/okian/skillboard/pkg/logger"
	"github.com/okian/skillboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Views selectable on the profile page.
const (
	ViewOverview = "overview"
	ViewExpanded = "expanded"
)

// CustomChartKey names the chart built from an ad-hoc skill list.
const CustomChartKey = "custom"

// Platform is the subset of the platform client the service needs.
type Platform interface {
	SignIn(ctx context.Context, identifier, password string) (string, error)
	FetchUser(ctx context.Context, token string) (model.User, error)
	FetchAuditTransactions(ctx context.Context, token string) ([]model.Transaction, error)
	FetchSkillTransactions(ctx context.Context, token string) ([]model.Transaction, error)
	FetchLatestProgress(ctx context.Context, token string) (*model.Progress, error)
}

// Session is a signed-in user's token and what it says about them.
type Session struct {
	Token  string
	Claims session.Claims
}

// ProfileRequest selects which skill charts a profile carries.
// Precedence: Skills, then Group, then View.
type ProfileRequest struct {
	View   string
	Group  string
	Skills []string
	Limit  int
}

// Service builds dashboard profiles from platform data.
type Service struct {
	platform  Platform
	logger    logger.Logger
	now       func() time.Time
	location  *time.Location
	prefix    string
	topSkills int
	groups    map[string]insights.SkillGroup
	overview  []string
	expanded  []string
}

// New constructs a Service. WithPlatform is required for SignIn and Profile.
func New(opts ...Option) *Service {
	s := &Service{
		now:       time.Now,
		location:  time.UTC,
		prefix:    insights.DefaultProjectPrefix,
		topSkills: insights.DefaultTopSkills,
		groups:    map[string]insights.SkillGroup{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// SignIn exchanges credentials for a session.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (Session, error) {
	if s.platform == nil {
		return Session{}, ErrNoPlatform
	}
	token, err := s.platform.SignIn(ctx, identifier, password)
	if err != nil {
		metrics.RecordSignIn(platform.Outcome(err))
		return Session{}, err
	}
	claims, err := s.Session(token)
	if err != nil {
		metrics.RecordSignIn(metrics.OutcomeError)
		return Session{}, fmt.Errorf("signin: %w", err)
	}
	metrics.RecordSignIn(metrics.OutcomeSuccess)
	s.logger.Info(ctx, "user signed in", logger.Int64("user_id", claims.UserID))
	return Session{Token: token, Claims: claims}, nil
}

// Session decodes token and reports expired or malformed tokens as
// platform.ErrUnauthorized.
func (s *Service) Session(token string) (session.Claims, error) {
	claims, err := session.Decode(token, s.now())
	if err != nil {
		return claims, fmt.Errorf("%w: %w", platform.ErrUnauthorized, err)
	}
	return claims, nil
}

// Profile fetches the four record sets concurrently and runs the insights
// pipeline over them.
func (s *Service) Profile(ctx context.Context, token string, req ProfileRequest) (p types.Profile, err error) {
	start := time.Now()
	defer func() {
		outcome := platform.Outcome(err)
		metrics.RecordProfileBuild(outcome, float64(time.Since(start).Milliseconds()), p.Audit.Ratio)
	}()

	if s.platform == nil {
		return types.Profile{}, ErrNoPlatform
	}
	groups, err := s.resolveGroups(req)
	if err != nil {
		return types.Profile{}, err
	}
	if _, err := s.Session(token); err != nil {
		return types.Profile{}, err
	}

	snap, err := s.fetch(ctx, token)
	if err != nil {
		return types.Profile{}, err
	}

	metrics.RecordTransactions(model.TypeAuditUp, countType(snap.AuditTransactions, model.TypeAuditUp))
	metrics.RecordTransactions(model.TypeAuditDown, countType(snap.AuditTransactions, model.TypeAuditDown))
	metrics.RecordTransactions("skill", len(snap.SkillTransactions))

	limit := s.topSkills
	if req.Limit > 0 {
		limit = req.Limit
	}
	p = insights.Summarize(snap, insights.Options{
		Location:      s.location,
		ProjectPrefix: s.prefix,
		TopSkills:     limit,
		Groups:        groups,
	})
	s.logger.Debug(ctx, "profile built",
		logger.String("login", p.User.Login),
		logger.Int("audit_transactions", len(snap.AuditTransactions)),
		logger.Int("skill_transactions", len(snap.SkillTransactions)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

func (s *Service) fetch(ctx context.Context, token string) (model.Snapshot, error) {
	var snap model.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.User, err = s.platform.FetchUser(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		snap.AuditTransactions, err = s.platform.FetchAuditTransactions(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		snap.SkillTransactions, err = s.platform.FetchSkillTransactions(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		snap.LatestProgress, err = s.platform.FetchLatestProgress(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// resolveGroups turns a request into the chart list handed to Summarize.
// A nil result means a single top-N chart.
func (s *Service) resolveGroups(req ProfileRequest) ([]insights.SkillGroup, error) {
	if len(req.Skills) > 0 {
		return []insights.SkillGroup{{Key: CustomChartKey, Title: "Selected skills", Skills: req.Skills}}, nil
	}
	if req.Group != "" {
		if req.Group == insights.TopChartKey {
			return nil, nil
		}
		g, ok := s.groups[req.Group]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s, %s)", ErrUnknownGroup, req.Group,
				insights.TopChartKey, strings.Join(s.GroupKeys(), ", "))
		}
		return []insights.SkillGroup{g}, nil
	}

	keys := s.overview
	switch req.View {
	case "", ViewOverview:
	case ViewExpanded:
		keys = s.expanded
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, req.View)
	}
	out := make([]insights.SkillGroup, 0, len(keys))
	for _, k := range keys {
		if g, ok := s.groups[k]; ok {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// GroupKeys lists the configured skill groups in sorted order.
func (s *Service) GroupKeys() []string {
	keys := make([]string, 0, len(s.groups))
	for k := range s.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsRequestError reports whether err came from a malformed ProfileRequest.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrUnknownGroup) || errors.Is(err, ErrUnknownView)
}

func countType(txs []model.Transaction, typ string) int {
	n := 0
	for _, tx := range txs {
		if tx.Type == typ {
			n++
		}
	}
	return n
}
