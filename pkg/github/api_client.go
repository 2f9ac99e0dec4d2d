package github

import (
	"context"
	"log/slog"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	prerrors "github.com/simasch/pr-finder/pkg/errors"
)

// searchPageSize is the GitHub search API maximum page size.
const searchPageSize = 100

// APIClient implements Client using the GitHub REST API.
type APIClient struct {
	client  *gh.Client
	verbose bool
	logger  *slog.Logger
}

// Compile-time check that APIClient implements Client.
var _ Client = (*APIClient)(nil)

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithAPILogger sets a custom logger for the API client.
func WithAPILogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// NewAPIClient creates a GitHub API client with the given token.
func NewAPIClient(token string, verbose bool, opts ...APIClientOption) (*APIClient, error) {
	if token == "" {
		return nil, prerrors.NewGitHubError("NewAPIClient", "token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	client := &APIClient{
		client:  gh.NewClient(tc),
		verbose: verbose,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// IsAuthenticated checks if the client is authenticated with GitHub.
func (c *APIClient) IsAuthenticated() bool {
	ctx := context.Background()
	_, _, err := c.client.Users.Get(ctx, "")
	return err == nil
}

// CurrentLogin returns the authenticated user's login.
func (c *APIClient) CurrentLogin(ctx context.Context) (string, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", toGitHubError("CurrentLogin", resp, err)
	}
	return user.GetLogin(), nil
}

// SearchOpenPRs returns open pull requests matching the query.
func (c *APIClient) SearchOpenPRs(ctx context.Context, q SearchQuery) ([]PullRequest, error) {
	query := buildSearchQuery(q)
	limit := q.Limit
	if limit <= 0 {
		limit = searchPageSize
	}

	c.logDebug("searching PRs", "query", query, "limit", limit)

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: min(limit, searchPageSize)},
	}

	var prs []PullRequest
	for {
		result, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, toGitHubError("SearchOpenPRs", resp, err)
		}

		for _, issue := range result.Issues {
			prs = append(prs, pullRequestFromIssue(issue))
			if len(prs) >= limit {
				return prs, nil
			}
		}

		if resp.NextPage == 0 {
			return prs, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListPushableRepos lists non-archived repositories with push access and at
// least one open issue or PR.
func (c *APIClient) ListPushableRepos(ctx context.Context, owner string) ([]Repository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner,collaborator,organization_member",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	c.logDebug("listing pushable repos", "owner", owner)

	var repos []Repository
	for {
		page, resp, err := c.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, toGitHubError("ListPushableRepos", resp, err)
		}

		for _, r := range page {
			repo := Repository{
				FullName:   r.GetFullName(),
				Archived:   r.GetArchived(),
				OpenIssues: r.GetOpenIssuesCount(),
			}
			if repo.Archived || repo.OpenIssues == 0 {
				continue
			}
			if owner != "" && r.GetOwner().GetLogin() != owner {
				continue
			}
			repos = append(repos, repo)
		}

		if resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetPRStatus fetches live mergeability state for a pull request URL.
func (c *APIClient) GetPRStatus(ctx context.Context, url string) (*PRStatus, error) {
	owner, repo, number, err := ParsePRURL(url)
	if err != nil {
		return nil, err
	}

	c.logDebug("getting PR status", "owner", owner, "repo", repo, "number", number)

	pr, resp, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, toGitHubError("GetPRStatus", resp, err)
	}

	status := &PRStatus{
		Number:           pr.GetNumber(),
		Title:            pr.GetTitle(),
		MergeStateStatus: strings.ToUpper(pr.GetMergeableState()),
	}

	// Mergeable is a tri-state: nil while GitHub is still computing it.
	switch {
	case pr.Mergeable == nil:
		status.Decision = Unknown
	case *pr.Mergeable:
		status.Decision = Mergeable
	default:
		status.Decision = Conflicting
	}

	return status, nil
}

// MergePR merges the pull request at the given URL.
func (c *APIClient) MergePR(ctx context.Context, url string, opts MergeOptions) error {
	owner, repo, number, err := ParsePRURL(url)
	if err != nil {
		return err
	}

	c.logDebug("merging PR", "owner", owner, "repo", repo, "number", number, "method", opts.Method)

	mergeOpts := &gh.PullRequestOptions{}
	switch opts.Method {
	case "merge", "squash", "rebase":
		mergeOpts.MergeMethod = opts.Method
	}

	_, resp, err := c.client.PullRequests.Merge(ctx, owner, repo, number, "", mergeOpts)
	if err != nil {
		return toGitHubError("MergePR", resp, err)
	}

	return nil
}

func (c *APIClient) logDebug(msg string, args ...any) {
	if c.verbose {
		c.logger.Debug(msg, args...)
	}
}

// Helper functions

// buildSearchQuery translates a SearchQuery into GitHub search syntax.
func buildSearchQuery(q SearchQuery) string {
	terms := []string{"is:open", "is:pr", "archived:false"}

	switch {
	case q.Author != "":
		terms = append(terms, "author:"+q.Author)
	case q.ReviewRequested != "":
		terms = append(terms, "review-requested:"+q.ReviewRequested)
	case q.Assignee != "":
		terms = append(terms, "assignee:"+q.Assignee)
	}

	for _, repo := range q.Repos {
		terms = append(terms, "repo:"+repo)
	}

	// user: matches both user and organization owners in the search API
	if q.Owner != "" && len(q.Repos) == 0 {
		terms = append(terms, "user:"+q.Owner)
	}

	return strings.Join(terms, " ")
}

// pullRequestFromIssue converts a search API issue result to a PullRequest.
func pullRequestFromIssue(issue *gh.Issue) PullRequest {
	return PullRequest{
		URL:          issue.GetHTMLURL(),
		RepoFullName: repoFullNameFromAPIURL(issue.GetRepositoryURL()),
		Number:       issue.GetNumber(),
		Title:        issue.GetTitle(),
		Author:       issue.GetUser().GetLogin(),
		Draft:        issue.GetDraft(),
		UpdatedAt:    issue.GetUpdatedAt().Time,
	}
}

// repoFullNameFromAPIURL extracts "owner/repo" from an API repository URL
// like https://api.github.com/repos/owner/repo.
func repoFullNameFromAPIURL(url string) string {
	const marker = "/repos/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}

func toGitHubError(operation string, resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode > 0 {
		return prerrors.NewGitHubErrorWithStatus(operation, resp.StatusCode, err.Error())
	}
	return prerrors.NewGitHubErrorWithCause(operation, "API request failed", err)
}
