package cli

import (
	"github.com/spf13/cobra"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/actions"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/cli/common"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/lookup"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

type reposAction func(ctx *runtime.Context, opts actions.ReposOptions) error

// newReposAddCmd creates the repos-add command
func newReposAddCmd(opts *common.GlobalOptions) *cobra.Command {
	return newReposCmd(opts, "repos-add", "add repositories to a runner group", "", actions.AddReposAction)
}

// newReposRemoveCmd creates the repos-remove command
func newReposRemoveCmd(opts *common.GlobalOptions) *cobra.Command {
	return newReposCmd(opts, "repos-remove", "remove repositories from a runner group", "", actions.RemoveReposAction)
}

// newReposReplaceCmd creates the repos-replace command
func newReposReplaceCmd(opts *common.GlobalOptions) *cobra.Command {
	return newReposCmd(opts, "repos-replace",
		"replaces all existing repos with a new set of repos for runner group access",
		`Replace every repository with access to the team's runner group.

All repositories are looked up first; if any does not exist nothing is
changed. Asks for confirmation when run in a terminal, unless --yes is given.`,
		actions.ReplaceReposAction)
}

func newReposCmd(opts *common.GlobalOptions, use, short, long string, action reposAction) *cobra.Command {
	var repos string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := lookup.SplitNames(repos)
			check := func() error {
				if len(names) == 0 {
					return errors.NewUsageError("Failed to provide the --repos flag")
				}
				return nil
			}
			return common.Run(cmd, opts, check, func(ctx *runtime.Context) error {
				return action(ctx, actions.ReposOptions{Team: opts.Team, Repos: names})
			})
		},
	}

	cmd.Flags().StringVar(&repos, "repos", "", "Comma separated repository names, e.g. --repos=a,b,c")

	return cmd
}
