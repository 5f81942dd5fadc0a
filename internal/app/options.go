package service

import (
	"time"

	"github.com/okian/skillboard/internal/domain/insights"
	"github.com/okian/skillboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPlatform sets the platform client.
func WithPlatform(p Platform) Option {
	return func(s *Service) {
		s.platform = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the zone dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithProjectPrefix sets the prefix stripped from progress paths.
func WithProjectPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTopSkills caps the unfiltered skill chart.
func WithTopSkills(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topSkills = n
		}
	}
}

// WithSkillGroup registers a named allow list.
func WithSkillGroup(key, title string, skills []string) Option {
	return func(s *Service) {
		s.groups[key] = insights.SkillGroup{Key: key, Title: title, Skills: append([]string(nil), skills...)}
	}
}

// WithViews sets the groups shown in the overview and expanded views.
func WithViews(overview, expanded []string) Option {
	return func(s *Service) {
		s.overview = append([]string(nil), overview...)
		s.expanded = append([]string(nil), expanded...)
	}
}

// WithClock overrides time.Now, used for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
