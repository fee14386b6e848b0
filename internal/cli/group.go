package cli

import (
	"github.com/spf13/cobra"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/actions"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/cli/common"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
)

// newGroupCreateCmd creates the group-create command
func newGroupCreateCmd(opts *common.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "group-create",
		Short: "create a new runner group",
		Args:  common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, opts, nil, func(ctx *runtime.Context) error {
				return actions.CreateGroupAction(ctx, actions.GroupOptions{Team: opts.Team})
			})
		},
	}
}

// newGroupDeleteCmd creates the group-delete command
func newGroupDeleteCmd(opts *common.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "group-delete",
		Short: "delete an existing runner group",
		Long: `Delete the team's runner group.

Asks for confirmation when run in a terminal, unless --yes is given.`,
		Args: common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, opts, nil, func(ctx *runtime.Context) error {
				return actions.DeleteGroupAction(ctx, actions.GroupOptions{Team: opts.Team})
			})
		},
	}
}

// newGroupListCmd creates the group-list command
func newGroupListCmd(opts *common.GlobalOptions) *cobra.Command {
	var (
		repos   bool
		runners bool
	)

	cmd := &cobra.Command{
		Use:   "group-list",
		Short: "list runners and repos assigned to a runner group",
		Args:  common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			check := func() error {
				if !repos && !runners {
					return errors.NewUsageError("Failed to provide one of, or both of the --repos and --runners flags")
				}
				return nil
			}
			return common.Run(cmd, opts, check, func(ctx *runtime.Context) error {
				return actions.ListGroupAction(ctx, actions.ListOptions{
					Team:    opts.Team,
					Repos:   repos,
					Runners: runners,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&repos, "repos", false, "List repositories with access to the runner group")
	cmd.Flags().BoolVar(&runners, "runners", false, "List runners assigned to the runner group")

	return cmd
}
