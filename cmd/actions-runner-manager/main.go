package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/cli"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}

	output.ConfigureColor()
	fmt.Fprintln(os.Stderr, output.ErrorPrefix()+err.Error())
	if stderrors.Is(err, errors.ErrUsage) {
		fmt.Fprintln(os.Stderr, output.Muted("Run 'actions-runner-manager --help' for usage."))
	}
	return errors.ExitCode(err)
}
