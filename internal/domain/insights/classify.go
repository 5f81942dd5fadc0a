// Package insights derives the dashboard figures from platform transactions.
//
// Every function here is pure: it reads the records it is given, never
// mutates them, keeps no state between calls, and maps missing data to zero
// values instead of returning errors.
package insights

import (
	"strings"

	"github.com/okian/skillboard/internal/domain/model"
)

// SkillRecord is a skill transaction tagged with its extracted skill name.
type SkillRecord struct {
	Name string
	model.Transaction
}

// Classification groups transactions by type. Groups preserve input order.
type Classification struct {
	Up     []model.Transaction
	Down   []model.Transaction
	Skills []SkillRecord
}

// Classify partitions records into audit-up, audit-down and skill groups.
// Records with any other type are dropped.
func Classify(records []model.Transaction) Classification {
	var c Classification
	for _, r := range records {
		switch {
		case r.Type == model.TypeAuditUp:
			c.Up = append(c.Up, r)
		case r.Type == model.TypeAuditDown:
			c.Down = append(c.Down, r)
		case strings.HasPrefix(r.Type, model.SkillTypePrefix):
			name := strings.TrimPrefix(r.Type, model.SkillTypePrefix)
			if name == "" {
				continue
			}
			c.Skills = append(c.Skills, SkillRecord{Name: name, Transaction: r})
		}
	}
	return c
}
