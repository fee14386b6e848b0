package lookup_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	armerrors "github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/lookup"
	"github.com/department-of-veterans-affairs/actions-runner-manager/testhelpers"
)

func TestRunnerGroupID(t *testing.T) {
	t.Run("matches names case-insensitively", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		group := fake.AddGroup("Infra", nil)
		resolver := lookup.NewResolver(fake.Client(), "acme")

		for _, input := range []string{"infra", "INFRA", "InFrA", "Infra"} {
			id, err := resolver.RunnerGroupID(context.Background(), input)
			require.NoError(t, err, input)
			require.Equal(t, group.ID, id, input)
		}
	})

	t.Run("follows pagination to the last page", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		for i := 0; i < 249; i++ {
			fake.AddGroup(fmt.Sprintf("group-%03d", i), nil)
		}
		target := fake.AddGroup("needle", nil)

		id, err := lookup.NewResolver(fake.Client(), "acme").RunnerGroupID(context.Background(), "NEEDLE")
		require.NoError(t, err)
		require.Equal(t, target.ID, id)

		var pages []string
		for _, r := range fake.Requests() {
			pages = append(pages, r.Path)
		}
		require.Len(t, pages, 3)
	})

	t.Run("first match wins on duplicate names", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		first := fake.AddGroup("dup", nil)
		fake.AddGroup("DUP", nil)

		id, err := lookup.NewResolver(fake.Client(), "acme").RunnerGroupID(context.Background(), "dup")
		require.NoError(t, err)
		require.Equal(t, first.ID, id)
	})

	t.Run("returns a not found error when no group matches", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.AddGroup("other", nil)

		_, err := lookup.NewResolver(fake.Client(), "acme").RunnerGroupID(context.Background(), "infra")
		require.ErrorIs(t, err, armerrors.ErrNotFound)
		require.Contains(t, err.Error(), "Unable to find runner group with name infra")
	})

	t.Run("wraps listing failures", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Fail(http.MethodGet, "/orgs/acme/actions/runner-groups", http.StatusForbidden)

		_, err := lookup.NewResolver(fake.Client(), "acme").RunnerGroupID(context.Background(), "infra")
		require.Error(t, err)
		require.NotErrorIs(t, err, armerrors.ErrNotFound)
		require.Contains(t, err.Error(), "failed to list runner groups")
	})
}

func TestRunnerGroupIDProperty(t *testing.T) {
	fake := testhelpers.NewFakeGitHub(t, "acme")
	group := fake.AddGroup("Infra-Runners", nil)
	resolver := lookup.NewResolver(fake.Client(), "acme")

	rapid.Check(t, func(t *rapid.T) {
		var b strings.Builder
		for i, r := range group.Name {
			if rapid.Bool().Draw(t, fmt.Sprintf("upper_%d", i)) {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteString(strings.ToLower(string(r)))
			}
		}

		id, err := resolver.RunnerGroupID(context.Background(), b.String())
		if err != nil {
			t.Fatalf("lookup of %q failed: %v", b.String(), err)
		}
		if id != group.ID {
			t.Fatalf("lookup of %q returned %d, want %d", b.String(), id, group.ID)
		}
	})
}

func TestRepoIDs(t *testing.T) {
	t.Run("resolves names in input order without deduplication", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Repos["api"] = 11
		fake.Repos["web"] = 22

		repos, err := lookup.NewResolver(fake.Client(), "acme").RepoIDs(context.Background(), []string{"web", "api", "web"})
		require.NoError(t, err)
		require.Equal(t, []int64{22, 11, 22}, repos.IDs())
		require.Equal(t, map[string]int64{"web": 22, "api": 11}, repos.ByName())
	})

	t.Run("aborts on the first missing repository", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Repos["api"] = 11
		fake.Repos["web"] = 22

		repos, err := lookup.NewResolver(fake.Client(), "acme").RepoIDs(context.Background(), []string{"api", "ghost", "web"})
		require.Nil(t, repos)
		require.ErrorIs(t, err, armerrors.ErrNotFound)
		require.Contains(t, err.Error(), "ghost")

		// web is never looked up
		for _, r := range fake.Requests() {
			require.NotEqual(t, "/repos/acme/web", r.Path)
		}
	})

	t.Run("wraps non-404 failures", func(t *testing.T) {
		fake := testhelpers.NewFakeGitHub(t, "acme")
		fake.Repos["api"] = 11
		fake.Fail(http.MethodGet, "/repos/acme/api", http.StatusUnauthorized)

		_, err := lookup.NewResolver(fake.Client(), "acme").RepoIDs(context.Background(), []string{"api"})
		require.Error(t, err)
		require.NotErrorIs(t, err, armerrors.ErrNotFound)
		require.Contains(t, err.Error(), "failed to get repository api")
	})
}

func TestSplitNames(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, lookup.SplitNames("a, b,,c ,"))
	require.Nil(t, lookup.SplitNames(" , "))
}
