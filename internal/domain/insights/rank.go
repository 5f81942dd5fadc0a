package insights

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/okian/skillboard/internal/domain/model"
)

// DefaultTopSkills caps the unfiltered skill ranking.
const DefaultTopSkills = 8

// RankedSkill is one row of a skill ranking.
type RankedSkill struct {
	Name        string
	DisplayName string
	Level       float64
	CreatedAt   model.Timestamp
}

// RankSkills orders skills by level, highest first. Equal levels keep the
// aggregate's first-seen order.
//
// With a non-empty allow list only the listed skills are kept and no cap
// applies. Without one every skill is kept and the result is truncated to
// limit entries (DefaultTopSkills when limit <= 0).
func RankSkills(agg *SkillAggregate, allow []string, limit int) []RankedSkill {
	var allowed map[string]struct{}
	if len(allow) > 0 {
		allowed = make(map[string]struct{}, len(allow))
		for _, name := range allow {
			allowed[name] = struct{}{}
		}
	}

	out := make([]RankedSkill, 0, agg.Len())
	for _, name := range agg.Names() {
		if allowed != nil {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		lvl, _ := agg.Get(name)
		out = append(out, RankedSkill{
			Name:        name,
			DisplayName: DisplayName(name),
			Level:       lvl.Amount,
			CreatedAt:   lvl.CreatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Level > out[j].Level })

	if allowed == nil {
		if limit <= 0 {
			limit = DefaultTopSkills
		}
		if len(out) > limit {
			out = out[:limit]
		}
	}
	return out
}

// DisplayName upper-cases the first rune of name and keeps the rest.
func DisplayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
