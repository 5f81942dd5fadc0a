package insights

import (
	"github.com/okian/skillboard/internal/domain/model"
)

// AuditAggregate holds summed audit amounts in bytes.
type AuditAggregate struct {
	Done     float64
	Received float64
	Ratio    float64
}

// AggregateAudits sums up and down amounts. Negative amounts count as zero.
func AggregateAudits(c Classification) AuditAggregate {
	done := sumAmounts(c.Up)
	received := sumAmounts(c.Down)
	return AuditAggregate{
		Done:     done,
		Received: received,
		Ratio:    Ratio(done, received),
	}
}

func sumAmounts(records []model.Transaction) float64 {
	var total float64
	for _, r := range records {
		if r.Amount > 0 {
			total += r.Amount
		}
	}
	return total
}

// SkillLevel is the most recent reading for one skill.
type SkillLevel struct {
	Amount    float64
	CreatedAt model.Timestamp
}

// SkillAggregate maps skill names to their latest level. Iteration order is
// the order in which each name was first seen.
type SkillAggregate struct {
	order  []string
	levels map[string]SkillLevel
}

// Len returns the number of distinct skills.
func (a *SkillAggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.order)
}

// Get returns the level recorded for name.
func (a *SkillAggregate) Get(name string) (SkillLevel, bool) {
	if a == nil {
		return SkillLevel{}, false
	}
	lvl, ok := a.levels[name]
	return lvl, ok
}

// Names returns skill names in first-seen order.
func (a *SkillAggregate) Names() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// AggregateSkills keeps, per skill name, the record with the latest CreatedAt.
// A record replaces the kept one only when strictly later, so on equal
// timestamps the first record seen wins.
func AggregateSkills(c Classification) *SkillAggregate {
	agg := &SkillAggregate{levels: make(map[string]SkillLevel, len(c.Skills))}
	for _, r := range c.Skills {
		cur, ok := agg.levels[r.Name]
		if !ok {
			agg.order = append(agg.order, r.Name)
		} else if !r.CreatedAt.After(cur.CreatedAt) {
			continue
		}
		agg.levels[r.Name] = SkillLevel{Amount: r.Amount, CreatedAt: r.CreatedAt}
	}
	return agg
}
