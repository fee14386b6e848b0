package github

import (
	"context"

	"github.com/google/go-github/v62/github"
)

// PerPage is the page size used for every listing call
const PerPage = 100

// PageFunc fetches one page of results
type PageFunc[T any] func(ctx context.Context, opts *github.ListOptions) ([]T, *github.Response, error)

// ListAll follows Response.NextPage until the listing is exhausted
func ListAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var all []T
	opts := &github.ListOptions{PerPage: PerPage}
	for {
		items, resp, err := fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// FindFirst pages through a listing and stops at the first item matching match.
// The boolean result is false when the listing is exhausted without a match.
func FindFirst[T any](ctx context.Context, fetch PageFunc[T], match func(T) bool) (T, bool, error) {
	var zero T
	opts := &github.ListOptions{PerPage: PerPage}
	for {
		items, resp, err := fetch(ctx, opts)
		if err != nil {
			return zero, false, err
		}
		for _, item := range items {
			if match(item) {
				return item, true, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return zero, false, nil
		}
		opts.Page = resp.NextPage
	}
}
