package actions

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	githubpkg "github.com/department-of-veterans-affairs/actions-runner-manager/internal/github"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/output"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// ListOptions contains options for the group-list command
type ListOptions struct {
	Team    string
	Repos   bool
	Runners bool
}

// ListGroupAction prints the repositories and/or runners assigned to the team's runner group.
// An empty section is reported, not treated as an error.
func ListGroupAction(ctx *runtime.Context, opts ListOptions) error {
	id, err := ctx.Resolver().RunnerGroupID(ctx, opts.Team)
	if err != nil {
		return err
	}

	if opts.Repos {
		if err := listRepos(ctx, opts.Team, id); err != nil {
			return err
		}
	}

	if opts.Runners {
		if err := listRunners(ctx, opts.Team, id); err != nil {
			return err
		}
	}

	return nil
}

func listRepos(ctx *runtime.Context, team string, id int64) error {
	repos, err := githubpkg.ListAll(ctx, func(c context.Context, lo *github.ListOptions) ([]*github.Repository, *github.Response, error) {
		page, resp, err := ctx.AdminClient.Actions.ListRepositoryAccessRunnerGroup(c, ctx.Org(), id, lo)
		if err != nil {
			return nil, resp, err
		}
		return page.Repositories, resp, nil
	})
	if err != nil {
		return fmt.Errorf("failed to list repositories of runner group %s: %w", team, err)
	}

	if len(repos) == 0 {
		ctx.Println(fmt.Sprintf("No repos found assigned to the %s runner group", team))
		return nil
	}

	ctx.Println(output.Header(fmt.Sprintf("The following repos have access to the %s runner group:", team)))
	for _, repo := range repos {
		ctx.Println(ctx.Config.RepoURL(repo.GetName()))
	}
	ctx.Println()
	return nil
}

func listRunners(ctx *runtime.Context, team string, id int64) error {
	runners, err := githubpkg.ListAll(ctx, func(c context.Context, lo *github.ListOptions) ([]*github.Runner, *github.Response, error) {
		page, resp, err := ctx.AdminClient.Actions.ListRunnerGroupRunners(c, ctx.Org(), id, lo)
		if err != nil {
			return nil, resp, err
		}
		return page.Runners, resp, nil
	})
	if err != nil {
		return fmt.Errorf("failed to list runners of runner group %s: %w", team, err)
	}

	if len(runners) == 0 {
		ctx.Println(fmt.Sprintf("No runners found assigned to the %s runner group", team))
		return nil
	}

	ctx.Println(output.Header(fmt.Sprintf("The following runners are assigned to %s runner group:", team)))
	for _, runner := range runners {
		ctx.Splog.Debug("runner %s id=%d os=%s status=%s", runner.GetName(), runner.GetID(), runner.GetOS(), runner.GetStatus())
		ctx.Println(runner.GetName())
	}
	return nil
}
