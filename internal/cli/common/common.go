// Package common provides shared helper functions for CLI commands.
package common

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/actions"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/config"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/output"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/runtime"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/utils"
)

// tokenFromStdin is the --token value that reads the token from standard input
const tokenFromStdin = "-"

// GlobalOptions holds the persistent flags shared by every command
type GlobalOptions struct {
	Token      string
	Team       string
	Org        string
	APIURL     string
	ConfigPath string
	Yes        bool
}

// AddFlags registers the global flags on a command's persistent flag set
func (o *GlobalOptions) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.Token, "token", "k", "", "GitHub API token of a maintainer of the team, or - to read it from stdin")
	flags.StringVarP(&o.Team, "team", "t", "", "Team slug; also the name of the team's runner group")
	flags.StringVar(&o.Org, "org", "", "GitHub organization (overrides config)")
	flags.StringVar(&o.APIURL, "api-url", "", "GitHub REST API URL (overrides config)")
	flags.StringVar(&o.ConfigPath, "config", "", "Path to the config file")
	flags.BoolVarP(&o.Yes, "yes", "y", false, "Do not ask for confirmation before destructive changes")
}

// Validate checks the flags every command requires. A --token of "-" is
// replaced by the token read from stdin.
func (o *GlobalOptions) Validate() error {
	if o.Token == tokenFromStdin {
		token, err := utils.ReadFromStdin()
		if err != nil {
			return fmt.Errorf("failed to read token from stdin: %w", err)
		}
		o.Token = token
	}
	if strings.TrimSpace(o.Token) == "" {
		return errors.NewUsageError("Failed to provide --token flag")
	}
	if strings.TrimSpace(o.Team) == "" {
		return errors.NewUsageError("Failed to provide --team flag")
	}
	return nil
}

// Run validates the flags, builds a runtime context and verifies that the
// caller maintains the team before running fn. check holds command specific
// validation and may be nil. No request is made before validation passes.
func Run(cmd *cobra.Command, opts *GlobalOptions, check func() error, fn func(ctx *runtime.Context) error) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if check != nil {
		if err := check(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(config.Overrides{
		ConfigPath: opts.ConfigPath,
		Org:        opts.Org,
		APIURL:     opts.APIURL,
	})
	if err != nil {
		return err
	}

	output.ConfigureColor()
	splog, err := output.NewSplogWithConfig(cmd.ErrOrStderr(), cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = splog.Close() }()

	ctx, err := runtime.New(cmd.Context(), cfg, splog, opts.Token)
	if err != nil {
		return err
	}
	ctx.Out = cmd.OutOrStdout()
	if !opts.Yes && output.IsInteractive() {
		ctx.Confirm = actions.SurveyConfirm
	}

	splog.Debug("Running %s for team %s in %s", cmd.Name(), opts.Team, cfg.Org)
	if err := ctx.Guard().VerifyMaintainer(ctx, opts.Team); err != nil {
		return err
	}
	return fn(ctx)
}

// NoArgs rejects positional arguments with a usage error
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.NewUsageError("unknown argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
