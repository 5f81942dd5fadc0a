// Package types contains the view shapes rendered by the pages, the JSON API
// and the CLI report.
package types

import "time"

// Profile is the complete derived view for one user.
type Profile struct {
	User   UserCard       `json:"user"`
	Audit  AuditCard      `json:"audit"`
	Skills []SkillChart   `json:"skills"`
	Latest *LatestProject `json:"latest,omitempty"`
}

// UserCard backs the personal details card.
type UserCard struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"` // formatted, "" when unknown
}

// AuditCard backs the audit ratio card.
type AuditCard struct {
	Done               float64 `json:"done"`
	Received           float64 `json:"received"`
	Ratio              float64 `json:"ratio"`
	DisplayRatio       string  `json:"display_ratio"`
	Status             string  `json:"status"`
	DonePercentage     float64 `json:"done_percentage"`
	ReceivedPercentage float64 `json:"received_percentage"`
	DoneDisplay        string  `json:"done_display"`
	ReceivedDisplay    string  `json:"received_display"`
}

// SkillChart is one radar chart worth of ranked skills.
type SkillChart struct {
	Key    string       `json:"key"`
	Title  string       `json:"title"`
	Skills []SkillEntry `json:"entries"`
}

// SkillEntry is one ranked skill.
type SkillEntry struct {
	Rank        int       `json:"rank"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Level       float64   `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// LatestProject backs the "What's up" card.
type LatestProject struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	UpdatedAt string   `json:"updated_at"`
	Grade     *float64 `json:"grade,omitempty"`
}

// Outcome labels the grade: "in progress" until graded, then "passed" for
// a grade of at least 1 and "failed" otherwise.
func (l LatestProject) Outcome() string {
	switch {
	case l.Grade == nil:
		return "in progress"
	case *l.Grade >= 1:
		return "passed"
	default:
		return "failed"
	}
}
