package authz_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/authz"
	armerrors "github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	githubpkg "github.com/department-of-veterans-affairs/actions-runner-manager/internal/github"
	"github.com/department-of-veterans-affairs/actions-runner-manager/testhelpers"
)

func TestVerifyMaintainer(t *testing.T) {
	t.Run("accepts a maintainer", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["infra"] = "maintainer"

		guard := authz.NewGuard(fake.Client(), "acme")
		require.NoError(t, guard.VerifyMaintainer(context.Background(), "infra"))
	})

	t.Run("rejects a plain member", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["infra"] = "member"

		err := authz.NewGuard(fake.Client(), "acme").VerifyMaintainer(context.Background(), "infra")
		require.Error(t, err)

		var nm *armerrors.NotMaintainerError
		require.True(t, errors.As(err, &nm))
		require.Equal(t, "infra", nm.Team)
		require.Equal(t, "octocat", nm.Login)
		require.Equal(t, "member", nm.Role)
	})

	t.Run("role comparison is case-sensitive", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Memberships["infra"] = "Maintainer"

		err := authz.NewGuard(fake.Client(), "acme").VerifyMaintainer(context.Background(), "infra")
		require.ErrorIs(t, err, armerrors.ErrNotMaintainer)
	})

	t.Run("propagates a missing team as an API error", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")

		err := authz.NewGuard(fake.Client(), "acme").VerifyMaintainer(context.Background(), "nope")
		require.Error(t, err)
		require.NotErrorIs(t, err, armerrors.ErrNotMaintainer)
		require.True(t, githubpkg.IsNotFound(err))
	})

	t.Run("propagates an invalid token", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Fail(http.MethodGet, "/user", http.StatusUnauthorized)

		err := authz.NewGuard(fake.Client(), "acme").VerifyMaintainer(context.Background(), "infra")
		require.Error(t, err)
		require.Equal(t, http.StatusUnauthorized, githubpkg.StatusCode(err))
		require.Contains(t, err.Error(), "failed to get authenticated user")
	})
}
