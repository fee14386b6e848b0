package actions

import (
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// VisibilitySelected restricts a runner group to explicitly selected repositories
const VisibilitySelected = "selected"

// GroupOptions contains options for the group-create and group-delete commands
type GroupOptions struct {
	Team string
}

// CreateGroupAction creates a runner group named after the team, visible to selected repositories only.
// Uniqueness of the name is left to the API.
func CreateGroupAction(ctx *runtime.Context, opts GroupOptions) error {
	group, _, err := ctx.AdminClient.Actions.CreateOrganizationRunnerGroup(ctx, ctx.Org(), github.CreateRunnerGroupRequest{
		Name:       github.String(opts.Team),
		Visibility: github.String(VisibilitySelected),
	})
	if err != nil {
		return fmt.Errorf("failed to create runner group %s: %w", opts.Team, err)
	}

	ctx.Splog.Info("Created runner group %s (id %d)", group.GetName(), group.GetID())
	ctx.Splog.Tip("Grant repositories access with: actions-runner-manager repos-add --team %s --repos=REPO", opts.Team)
	return nil
}

// DeleteGroupAction deletes the runner group named after the team
func DeleteGroupAction(ctx *runtime.Context, opts GroupOptions) error {
	id, err := ctx.Resolver().RunnerGroupID(ctx, opts.Team)
	if err != nil {
		return err
	}

	if err := confirm(ctx, fmt.Sprintf("Delete runner group %s (id %d)?", opts.Team, id)); err != nil {
		return err
	}

	if _, err := ctx.AdminClient.Actions.DeleteOrganizationRunnerGroup(ctx, ctx.Org(), id); err != nil {
		return fmt.Errorf("failed to delete runner group %s: %w", opts.Team, err)
	}

	ctx.Splog.Info("Deleted runner group %s", opts.Team)
	return nil
}
