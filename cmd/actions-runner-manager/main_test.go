package main

import (
	"bytes"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	armerrors "github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/testhelpers"
)

func runBinary(t *testing.T, fake *testhelpers.FakeGitHub, args ...string) (string, string, int) {
	t.Helper()
	home := t.TempDir()

	cmd := exec.Command(testhelpers.BinaryPath(t), append(args, "--org", fake.Org, "--api-url", fake.URL().String())...)
	cmd.Env = []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + home,
		"ARM_LOG_FILE=" + filepath.Join(home, "arm.log"),
		"NO_COLOR=1",
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return stdout.String(), stderr.String(), code
}

func TestExitCodes(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	t.Run("success", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["platform"] = "maintainer"

		stdout, _, code := runBinary(t, fake, "token-add", "-k", "ghp_x", "-t", "platform")
		require.Equal(t, armerrors.ExitOK, code)
		require.Equal(t, "AABBREGISTRATION\n", stdout)
	})

	t.Run("usage", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")

		_, stderr, code := runBinary(t, fake, "repos-add", "-k", "ghp_x", "-t", "platform")
		require.Equal(t, armerrors.ExitUsage, code)
		require.Contains(t, stderr, "Failed to provide the --repos flag")
	})

	t.Run("missing command", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")

		_, stderr, code := runBinary(t, fake)
		require.Equal(t, armerrors.ExitUsage, code)
		require.Contains(t, stderr, "Failed to provide a command")
		require.Empty(t, fake.Requests())
	})

	t.Run("not a maintainer", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["platform"] = "member"

		_, stderr, code := runBinary(t, fake, "group-create", "-k", "ghp_x", "-t", "platform")
		require.Equal(t, armerrors.ExitNotMaintainer, code)
		require.Contains(t, stderr, "Provided API key does not belong to a user with maintainer privileges on the team platform")
		require.Empty(t, fake.MutatingRequests())
	})

	t.Run("runner group not found", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["platform"] = "maintainer"

		_, stderr, code := runBinary(t, fake, "group-list", "--runners", "-k", "ghp_x", "-t", "platform")
		require.Equal(t, armerrors.ExitNotFound, code)
		require.Contains(t, stderr, "Unable to find runner group with name platform. Please reach out to GitHub Support if you need help")
	})
}
