// Package model contains the platform records passed between layers.
package model

// Transaction types recognized by the insights pipeline.
const (
	TypeAuditUp     = "up"
	TypeAuditDown   = "down"
	SkillTypePrefix = "skill_"
)

// Transaction is one row of the platform's transaction table.
// Fields mirror the GraphQL selection used by the platform client.
type Transaction struct {
	ID        int64     `json:"id"`        // opaque identifier
	Type      string    `json:"type"`      // "up", "down", "xp", "skill_<name>", ...
	Amount    float64   `json:"amount"`    // bytes for audits, 0-100 for skills
	CreatedAt Timestamp `json:"createdAt"` // used only for recency
	Path      string    `json:"path,omitempty"`
}

// User holds the profile fields shown on the personal details card.
type User struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Progress is the most recent progress row, used for the "What's up" card.
type Progress struct {
	Path      string    `json:"path"`
	Grade     *float64  `json:"grade"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// Snapshot is everything fetched for one profile render.
type Snapshot struct {
	User              User
	AuditTransactions []Transaction
	SkillTransactions []Transaction
	LatestProgress    *Progress
}
