// Package authz gates commands on the caller's role in a GitHub team.
package authz

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
)

// RoleMaintainer is the team role required to manage a runner group
const RoleMaintainer = "maintainer"

// Guard verifies team membership with the caller's own token
type Guard struct {
	client *github.Client
	org    string
}

// NewGuard creates a guard for org using a client authenticated as the caller
func NewGuard(client *github.Client, org string) *Guard {
	return &Guard{client: client, org: org}
}

// VerifyMaintainer returns nil when the authenticated user is a maintainer of team.
// A *errors.NotMaintainerError is returned for any other role; API failures are
// wrapped and returned.
func (g *Guard) VerifyMaintainer(ctx context.Context, team string) error {
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get authenticated user: %w", err)
	}
	login := user.GetLogin()

	membership, _, err := g.client.Teams.GetTeamMembershipBySlug(ctx, g.org, team, login)
	if err != nil {
		return fmt.Errorf("failed to get membership of %s in team %s: %w", login, team, err)
	}

	if role := membership.GetRole(); role != RoleMaintainer {
		return errors.NewNotMaintainerError(team, login, role)
	}
	return nil
}
