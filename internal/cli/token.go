package cli

import (
	"github.com/spf13/cobra"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/actions"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/cli/common"
)

// newTokenAddCmd creates the token-add command
func newTokenAddCmd(opts *common.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token-add",
		Short: "create an organization runner addition token",
		Args:  common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, opts, nil, actions.RegistrationTokenAction)
		},
	}
}

// newTokenRemoveCmd creates the token-remove command
func newTokenRemoveCmd(opts *common.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token-remove",
		Short: "create an organization runner removal token",
		Args:  common.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, opts, nil, actions.RemovalTokenAction)
		},
	}
}
