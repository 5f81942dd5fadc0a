package platform

import (
	"context"
	"fmt"

	"github.com/okian/skillboard/internal/domain/model"
)

// GraphQL documents. The platform scopes every table to the token's user.
const (
	queryUser = `query GetUserInfo {
  user {
    id
    login
    email
    createdAt
  }
}`

	queryAudits = `query GetAuditRatio {
  transaction(where: { _or: [{ type: { _eq: "up" } }, { type: { _eq: "down" } }] }) {
    id
    type
    amount
    createdAt
    path
  }
}`

	querySkills = `query GetUserSkills {
  transaction(where: { type: { _like: "skill_%" } }) {
    id
    type
    amount
    createdAt
    path
  }
}`

	queryLatestProgress = `query GetLatestProgress {
  user {
    progresses(order_by: { updatedAt: desc }, limit: 1) {
      path
      grade
      createdAt
      updatedAt
    }
  }
}`
)

// FetchUser returns the signed-in user. A token that resolves to no user is
// reported as ErrUnauthorized.
func (c *Client) FetchUser(ctx context.Context, token string) (model.User, error) {
	var out struct {
		User []model.User `json:"user"`
	}
	if err := c.Query(ctx, "user", token, queryUser, nil, &out); err != nil {
		return model.User{}, err
	}
	if len(out.User) == 0 {
		return model.User{}, fmt.Errorf("user: %w: no user for token", ErrUnauthorized)
	}
	return out.User[0], nil
}

// FetchAuditTransactions returns the user's "up" and "down" transactions.
func (c *Client) FetchAuditTransactions(ctx context.Context, token string) ([]model.Transaction, error) {
	return c.transactions(ctx, "audits", token, queryAudits)
}

// FetchSkillTransactions returns the user's "skill_%" transactions.
func (c *Client) FetchSkillTransactions(ctx context.Context, token string) ([]model.Transaction, error) {
	return c.transactions(ctx, "skills", token, querySkills)
}

func (c *Client) transactions(ctx context.Context, op, token, query string) ([]model.Transaction, error) {
	var out struct {
		Transaction []model.Transaction `json:"transaction"`
	}
	if err := c.Query(ctx, op, token, query, nil, &out); err != nil {
		return nil, err
	}
	return out.Transaction, nil
}

// FetchLatestProgress returns the most recently updated progress row, or
// nil when the user has none.
func (c *Client) FetchLatestProgress(ctx context.Context, token string) (*model.Progress, error) {
	var out struct {
		User []struct {
			Progresses []model.Progress `json:"progresses"`
		} `json:"user"`
	}
	if err := c.Query(ctx, "latest_progress", token, queryLatestProgress, nil, &out); err != nil {
		return nil, err
	}
	if len(out.User) == 0 || len(out.User[0].Progresses) == 0 {
		return nil, nil
	}
	p := out.User[0].Progresses[0]
	return &p, nil
}
