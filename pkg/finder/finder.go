// Package finder aggregates a user's open pull requests across four contexts
// (authored, review-requested, assigned, push-access repositories) and
// deduplicates them into priority-ordered, mutually exclusive categories.
package finder

import (
	"context"
	"log/slog"
	"sync"

	"github.com/simasch/pr-finder/pkg/github"
)

// Category is one of the four fixed buckets a pull request lands in.
// The declaration order defines both display order and dedup priority.
type Category int

const (
	// CategoryAuthored holds PRs authored by the user.
	CategoryAuthored Category = iota
	// CategoryReviewRequested holds PRs awaiting the user's review.
	CategoryReviewRequested
	// CategoryAssigned holds PRs assigned to the user.
	CategoryAssigned
	// CategoryRepoAccess holds PRs in repositories the user can push to.
	CategoryRepoAccess
)

// Categories lists all categories in display/priority order.
var Categories = []Category{
	CategoryAuthored,
	CategoryReviewRequested,
	CategoryAssigned,
	CategoryRepoAccess,
}

// String returns the human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryAuthored:
		return "Authored"
	case CategoryReviewRequested:
		return "Review requested"
	case CategoryAssigned:
		return "Assigned"
	case CategoryRepoAccess:
		return "Repo access"
	default:
		return "Unknown"
	}
}

// RawLists holds the four candidate lists as returned by the source queries,
// before deduplication. Lists may overlap.
type RawLists struct {
	Authored        []github.PullRequest
	ReviewRequested []github.PullRequest
	Assigned        []github.PullRequest
	RepoAccess      []github.PullRequest
}

// Aggregated holds the four final lists after deduplication. No URL appears
// in more than one list.
type Aggregated struct {
	lists [4][]github.PullRequest
}

// Category returns the deduplicated list for a category.
func (a *Aggregated) Category(c Category) []github.PullRequest {
	return a.lists[c]
}

// Total returns the number of pull requests across all categories.
func (a *Aggregated) Total() int {
	n := 0
	for _, l := range a.lists {
		n += len(l)
	}
	return n
}

// repoBatchSize bounds the number of repo: qualifiers per search query so the
// query string stays within GitHub's search length limits.
const repoBatchSize = 10

// maxInFlightBatches bounds concurrent repo-batch searches.
const maxInFlightBatches = 4

// FetchOptions configures a Fetch run.
type FetchOptions struct {
	Login string // The authenticated user's login
	Owner string // Optional owner/org restriction for all queries
	Limit int    // Max results per search query
}

// Fetch issues the four source queries and returns the raw candidate lists.
// The three qualifier searches and the repo-access lookup run concurrently,
// each writing to its own result slot. Any single query failing degrades to
// an empty list for that slot; a failed fetch never aborts the run.
func Fetch(ctx context.Context, client github.Client, opts FetchOptions) RawLists {
	var raw RawLists

	search := func(dst *[]github.PullRequest, q github.SearchQuery) {
		prs, err := client.SearchOpenPRs(ctx, q)
		if err != nil {
			slog.Debug("search degraded to empty result", "error", err)
			return
		}
		*dst = prs
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		search(&raw.Authored, github.SearchQuery{Author: opts.Login, Owner: opts.Owner, Limit: opts.Limit})
	}()
	go func() {
		defer wg.Done()
		search(&raw.ReviewRequested, github.SearchQuery{ReviewRequested: opts.Login, Owner: opts.Owner, Limit: opts.Limit})
	}()
	go func() {
		defer wg.Done()
		search(&raw.Assigned, github.SearchQuery{Assignee: opts.Login, Owner: opts.Owner, Limit: opts.Limit})
	}()
	go func() {
		defer wg.Done()
		raw.RepoAccess = fetchRepoAccessPRs(ctx, client, opts)
	}()
	wg.Wait()

	return raw
}

// fetchRepoAccessPRs lists repositories the user can push to and searches
// their open PRs in batches of repoBatchSize, with a bounded number of
// batches in flight. Batch results are unioned; order across batches does
// not matter because aggregation treats the list as one raw source.
func fetchRepoAccessPRs(ctx context.Context, client github.Client, opts FetchOptions) []github.PullRequest {
	repos, err := client.ListPushableRepos(ctx, opts.Owner)
	if err != nil {
		slog.Debug("repository listing degraded to empty result", "error", err)
		return nil
	}
	if len(repos) == 0 {
		return nil
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.FullName)
	}

	batches := batchRepos(names, repoBatchSize)
	results := make([][]github.PullRequest, len(batches))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxInFlightBatches)
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			prs, err := client.SearchOpenPRs(ctx, github.SearchQuery{Repos: batch, Limit: opts.Limit})
			if err != nil {
				slog.Debug("repo batch search degraded to empty result", "error", err)
				return
			}
			results[i] = prs
		}(i, batch)
	}
	wg.Wait()

	var union []github.PullRequest
	for _, prs := range results {
		union = append(union, prs...)
	}
	return union
}

// batchRepos splits repo names into chunks of at most size.
func batchRepos(names []string, size int) [][]string {
	var batches [][]string
	for len(names) > size {
		batches = append(batches, names[:size])
		names = names[size:]
	}
	if len(names) > 0 {
		batches = append(batches, names)
	}
	return batches
}

// Aggregate produces the four final lists from the raw candidate lists using
// the fixed priority Authored > ReviewRequested > Assigned > RepoAccess.
// A single linear pass per category with a growing seen set: each URL lands
// in exactly one category, within-category order is preserved, and no PR is
// dropped.
func Aggregate(raw RawLists) *Aggregated {
	seen := make(map[string]struct{})

	take := func(prs []github.PullRequest) []github.PullRequest {
		out := make([]github.PullRequest, 0, len(prs))
		for _, pr := range prs {
			if _, dup := seen[pr.URL]; dup {
				continue
			}
			seen[pr.URL] = struct{}{}
			out = append(out, pr)
		}
		return out
	}

	agg := &Aggregated{}
	agg.lists[CategoryAuthored] = take(raw.Authored)
	agg.lists[CategoryReviewRequested] = take(raw.ReviewRequested)
	agg.lists[CategoryAssigned] = take(raw.Assigned)
	agg.lists[CategoryRepoAccess] = take(raw.RepoAccess)
	return agg
}
