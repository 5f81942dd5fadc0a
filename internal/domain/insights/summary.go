package insights

import (
	"time"

	"github.com/okian/skillboard/internal/domain/model"
	"github.com/okian/skillboard/internal/domain/types"
)

// TopChartKey names the chart produced when no skill group is requested.
const TopChartKey = "top"

// SkillGroup is a named allow list rendered as its own chart.
type SkillGroup struct {
	Key    string
	Title  string
	Skills []string
}

// Options tunes Summarize. The zero value is usable.
type Options struct {
	Location      *time.Location
	ProjectPrefix string
	TopSkills     int
	Groups        []SkillGroup
}

// Summarize runs the full pipeline over one snapshot.
func Summarize(s model.Snapshot, opts Options) types.Profile {
	audits := AggregateAudits(Classify(s.AuditTransactions))
	eval := EvaluateAudit(audits.Done, audits.Received)
	skills := AggregateSkills(Classify(s.SkillTransactions))

	p := types.Profile{
		User: types.UserCard{
			ID:        s.User.ID,
			Login:     s.User.Login,
			Email:     s.User.Email,
			CreatedAt: FormatDate(s.User.CreatedAt, opts.Location),
		},
		Audit: types.AuditCard{
			Done:               eval.Done,
			Received:           eval.Received,
			Ratio:              eval.Ratio,
			DisplayRatio:       eval.DisplayRatio,
			Status:             string(eval.Status),
			DonePercentage:     eval.DonePercentage,
			ReceivedPercentage: eval.ReceivedPercentage,
			DoneDisplay:        FormatBytes(eval.Done),
			ReceivedDisplay:    FormatBytes(eval.Received),
		},
	}

	if len(opts.Groups) == 0 {
		p.Skills = []types.SkillChart{chart(TopChartKey, "Best skills", RankSkills(skills, nil, opts.TopSkills))}
	} else {
		p.Skills = make([]types.SkillChart, 0, len(opts.Groups))
		for _, g := range opts.Groups {
			p.Skills = append(p.Skills, chart(g.Key, g.Title, RankSkills(skills, g.Skills, opts.TopSkills)))
		}
	}

	if lp := s.LatestProgress; lp != nil {
		// The card shows when the progress row was opened.
		updated := lp.CreatedAt
		if updated.IsZero() {
			updated = lp.UpdatedAt
		}
		p.Latest = &types.LatestProject{
			Name:      FormatProjectPath(lp.Path, opts.ProjectPrefix),
			Path:      lp.Path,
			UpdatedAt: FormatDate(updated, opts.Location),
			Grade:     lp.Grade,
		}
	}
	return p
}

func chart(key, title string, ranked []RankedSkill) types.SkillChart {
	entries := make([]types.SkillEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = types.SkillEntry{
			Rank:        i + 1,
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Level:       r.Level,
			CreatedAt:   r.CreatedAt.Time,
		}
	}
	return types.SkillChart{Key: key, Title: title, Skills: entries}
}
