// Package cli wires the actions-runner-manager commands to cobra.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/cli/common"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	opts := &common.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "actions-runner-manager",
		Short: "Manage GitHub Actions self-hosted runner groups for a team",
		Long: `Manage GitHub Actions self-hosted runner groups for a team.

Each team owns one runner group named after the team. Every command checks
that the --token belongs to a maintainer of the --team before doing anything.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          unknownCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errors.NewUsageError("Failed to provide a command")
		},
	}

	opts.AddFlags(rootCmd.PersistentFlags())
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewUsageError("%s", err)
	})

	rootCmd.AddCommand(
		newGroupCreateCmd(opts),
		newGroupDeleteCmd(opts),
		newGroupListCmd(opts),
		newReposAddCmd(opts),
		newReposRemoveCmd(opts),
		newReposReplaceCmd(opts),
		newTokenAddCmd(opts),
		newTokenRemoveCmd(opts),
	)

	return rootCmd
}

// unknownCommand rejects verbs that match no subcommand
func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return errors.NewUsageError("%s", msg)
}
