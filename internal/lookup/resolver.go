// Package lookup resolves human readable runner group and repository names to IDs.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"

	"github.com/department-of-veterans-affairs/actions-runner-manager/internal/errors"
	githubpkg "github.com/department-of-veterans-affairs/actions-runner-manager/internal/github"
)

// Repo is a resolved repository
type Repo struct {
	Name string
	ID   int64
}

// RepoIDs is a batch of resolved repositories in input order
type RepoIDs []Repo

// IDs returns the repository IDs in input order
func (r RepoIDs) IDs() []int64 {
	ids := make([]int64, 0, len(r))
	for _, repo := range r {
		ids = append(ids, repo.ID)
	}
	return ids
}

// ByName returns the name to ID mapping
func (r RepoIDs) ByName() map[string]int64 {
	m := make(map[string]int64, len(r))
	for _, repo := range r {
		m[repo.Name] = repo.ID
	}
	return m
}

// Resolver looks up IDs in one organization
type Resolver struct {
	client *github.Client
	org    string
}

// NewResolver creates a resolver for org
func NewResolver(client *github.Client, org string) *Resolver {
	return &Resolver{client: client, org: org}
}

// RunnerGroupID returns the ID of the first runner group whose name matches
// name case-insensitively, paging through every runner group in the organization.
func (r *Resolver) RunnerGroupID(ctx context.Context, name string) (int64, error) {
	group, found, err := githubpkg.FindFirst(ctx,
		func(ctx context.Context, opts *github.ListOptions) ([]*github.RunnerGroup, *github.Response, error) {
			groups, resp, err := r.client.Actions.ListOrganizationRunnerGroups(ctx, r.org, &github.ListOrgRunnerGroupOptions{ListOptions: *opts})
			if err != nil {
				return nil, resp, err
			}
			return groups.RunnerGroups, resp, nil
		},
		func(g *github.RunnerGroup) bool {
			return strings.EqualFold(g.GetName(), name)
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to list runner groups: %w", err)
	}
	if !found {
		return 0, errors.NewRunnerGroupNotFoundError(name)
	}
	return group.GetID(), nil
}

// RepoID resolves a single repository name in the organization.
// A 404 yields a *errors.NotFoundError; other failures are wrapped.
func (r *Resolver) RepoID(ctx context.Context, name string) (int64, error) {
	repo, _, err := r.client.Repositories.Get(ctx, r.org, name)
	if err != nil {
		if githubpkg.IsNotFound(err) {
			return 0, errors.NewRepositoryNotFoundError(name)
		}
		return 0, fmt.Errorf("failed to get repository %s: %w", name, err)
	}
	return repo.GetID(), nil
}

// RepoIDs resolves every name in order, without deduplication. The first
// failure aborts the whole batch, so callers never see a partial result.
func (r *Resolver) RepoIDs(ctx context.Context, names []string) (RepoIDs, error) {
	resolved := make(RepoIDs, 0, len(names))
	for _, name := range names {
		id, err := r.RepoID(ctx, name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, Repo{Name: name, ID: id})
	}
	return resolved, nil
}

// SplitNames splits a comma separated list, trimming whitespace and dropping empty entries
func SplitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
