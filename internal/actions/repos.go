package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// ReposOptions contains options for the repos-add, repos-remove and repos-replace commands
type ReposOptions struct {
	Team  string
	Repos []string
}

// AddReposAction grants each repository access to the team's runner group.
// Repositories are applied one request at a time in input order; a failure
// stops the loop and leaves earlier repositories added.
func AddReposAction(ctx *runtime.Context, opts ReposOptions) error {
	return applyEach(ctx, opts, "add", "Added", func(c context.Context, org string, groupID, repoID int64) (*github.Response, error) {
		return ctx.AdminClient.Actions.AddRepositoryAccessRunnerGroup(c, org, groupID, repoID)
	})
}

// RemoveReposAction revokes each repository's access to the team's runner group,
// with the same ordering and partial failure behavior as AddReposAction.
func RemoveReposAction(ctx *runtime.Context, opts ReposOptions) error {
	return applyEach(ctx, opts, "remove", "Removed", func(c context.Context, org string, groupID, repoID int64) (*github.Response, error) {
		return ctx.AdminClient.Actions.RemoveRepositoryAccessRunnerGroup(c, org, groupID, repoID)
	})
}

// ReplaceReposAction replaces the runner group's repository list in a single request.
// Every name is resolved before anything is changed, so an unknown repository
// leaves the group untouched.
func ReplaceReposAction(ctx *runtime.Context, opts ReposOptions) error {
	id, err := ctx.Resolver().RunnerGroupID(ctx, opts.Team)
	if err != nil {
		return err
	}

	repos, err := ctx.Resolver().RepoIDs(ctx, opts.Repos)
	if err != nil {
		return err
	}

	if err := confirm(ctx, fmt.Sprintf("Replace all repositories of runner group %s with %s?", opts.Team, strings.Join(opts.Repos, ", "))); err != nil {
		return err
	}

	_, err = ctx.AdminClient.Actions.SetRepositoryAccessRunnerGroup(ctx, ctx.Org(), id, github.SetRepoAccessRunnerGroupRequest{
		SelectedRepositoryIDs: repos.IDs(),
	})
	if err != nil {
		return fmt.Errorf("failed to replace repositories of runner group %s: %w", opts.Team, err)
	}

	ctx.Splog.Info("Replaced repositories of runner group %s (%d repositories)", opts.Team, len(repos))
	return nil
}

type repoAccessFunc func(ctx context.Context, org string, groupID, repoID int64) (*github.Response, error)

func applyEach(ctx *runtime.Context, opts ReposOptions, verb, done string, apply repoAccessFunc) error {
	id, err := ctx.Resolver().RunnerGroupID(ctx, opts.Team)
	if err != nil {
		return err
	}

	repos, err := ctx.Resolver().RepoIDs(ctx, opts.Repos)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		if _, err := apply(ctx, ctx.Org(), id, repo.ID); err != nil {
			return fmt.Errorf("failed to %s repository %s for runner group %s: %w", verb, repo.Name, opts.Team, err)
		}
		ctx.Splog.Info("%s %s (runner group %s)", done, repo.Name, opts.Team)
	}
	return nil
}
