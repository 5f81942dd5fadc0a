package service

import (
	"fmt"
	"sort"

	"github.com/okian/skillboard/internal/config"
)

// ConfigOptions translates cfg into service options. Groups are applied in
// key order so the resulting service is deterministic.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", config.ErrInvalidConfig, cfg.Timezone, err)
	}
	opts := []Option{
		WithLocation(loc),
		WithTopSkills(cfg.TopSkills),
		WithProjectPrefix(cfg.ProjectPathPrefix),
		WithViews(cfg.OverviewGroups, cfg.ExpandedGroups),
	}
	keys := make([]string, 0, len(cfg.SkillGroups))
	for k := range cfg.SkillGroups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g := cfg.SkillGroups[k]
		opts = append(opts, WithSkillGroup(k, g.Title, g.Skills))
	}
	return opts, nil
}
