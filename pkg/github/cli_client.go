package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	prerrors "github.com/simasch/pr-finder/pkg/errors"
)

// CLIClient implements the Client interface using the gh CLI.
// This is the primary implementation as most users have gh CLI installed
// and it handles authentication automatically.
type CLIClient struct {
	verbose bool
	token   string // Optional token for GITHUB_TOKEN env override
	logger  *slog.Logger
}

// CLIClientOption is a functional option for configuring CLIClient.
type CLIClientOption func(*CLIClient)

// WithToken sets a token to be used via GITHUB_TOKEN environment variable.
func WithToken(token string) CLIClientOption {
	return func(c *CLIClient) {
		c.token = token
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) CLIClientOption {
	return func(c *CLIClient) {
		c.logger = logger
	}
}

// NewCLIClient creates a new gh CLI-based GitHub client.
func NewCLIClient(verbose bool, opts ...CLIClientOption) (*CLIClient, error) {
	c := &CLIClient{
		verbose: verbose,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Verify gh CLI is available
	if _, err := exec.LookPath("gh"); err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("NewCLIClient", "gh CLI not found in PATH", err)
	}

	return c, nil
}

// IsAuthenticated checks if gh CLI is authenticated with GitHub.
func (c *CLIClient) IsAuthenticated() bool {
	cmd := exec.Command("gh", "auth", "status")
	if c.token != "" {
		cmd.Env = append(os.Environ(), "GITHUB_TOKEN="+c.token)
	}
	return cmd.Run() == nil
}

// CurrentLogin returns the authenticated user's login.
func (c *CLIClient) CurrentLogin(ctx context.Context) (string, error) {
	output, err := c.runGH(ctx, "api", "user", "--jq", ".login")
	if err != nil {
		return "", prerrors.NewGitHubErrorWithCause("CurrentLogin", "failed to look up authenticated user", err)
	}
	return strings.TrimSpace(output), nil
}

// SearchOpenPRs returns open pull requests matching the query.
func (c *CLIClient) SearchOpenPRs(ctx context.Context, q SearchQuery) ([]PullRequest, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = searchPageSize
	}

	args := []string{
		"search", "prs",
		"--state", "open",
		"--limit", strconv.Itoa(limit),
		"--json", strings.Join(searchJSONFields(), ","),
	}

	switch {
	case q.Author != "":
		args = append(args, "--author", q.Author)
	case q.ReviewRequested != "":
		args = append(args, "--review-requested", q.ReviewRequested)
	case q.Assignee != "":
		args = append(args, "--assignee", q.Assignee)
	}

	for _, repo := range q.Repos {
		args = append(args, "--repo", repo)
	}
	if q.Owner != "" && len(q.Repos) == 0 {
		args = append(args, "--owner", q.Owner)
	}

	// Searching archived repositories only produces stale results
	args = append(args, "--archived=false")

	c.logDebug("searching PRs", "args", args)

	output, err := c.runGH(ctx, args...)
	if err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("SearchOpenPRs", "failed to search PRs", err)
	}

	var responses []ghSearchPR
	if err := json.Unmarshal([]byte(output), &responses); err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("SearchOpenPRs", "failed to parse search response", err)
	}

	prs := make([]PullRequest, 0, len(responses))
	for i := range responses {
		prs = append(prs, responses[i].toPullRequest())
	}

	return prs, nil
}

// ListPushableRepos lists non-archived repositories with push access and at
// least one open issue or PR.
func (c *CLIClient) ListPushableRepos(ctx context.Context, owner string) ([]Repository, error) {
	endpoint := "user/repos?affiliation=owner,collaborator,organization_member&per_page=100"
	args := []string{"api", "--paginate", endpoint}

	c.logDebug("listing pushable repos", "owner", owner)

	output, err := c.runGH(ctx, args...)
	if err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("ListPushableRepos", "failed to list repositories", err)
	}

	// gh api --paginate emits one JSON array per page, concatenated.
	var repos []Repository
	dec := json.NewDecoder(strings.NewReader(output))
	for {
		var page []Repository
		if err := dec.Decode(&page); err != nil {
			if err == io.EOF {
				break
			}
			return nil, prerrors.NewGitHubErrorWithCause("ListPushableRepos", "failed to parse repository response", err)
		}
		for _, repo := range page {
			if repo.Archived || repo.OpenIssues == 0 {
				continue
			}
			if owner != "" && !strings.HasPrefix(repo.FullName, owner+"/") {
				continue
			}
			repos = append(repos, repo)
		}
	}

	return repos, nil
}

// GetPRStatus fetches live mergeability state for a pull request URL.
func (c *CLIClient) GetPRStatus(ctx context.Context, url string) (*PRStatus, error) {
	args := []string{
		"pr", "view", url,
		"--json", "number,title,mergeable,mergeStateStatus",
	}

	c.logDebug("getting PR status", "url", url)

	output, err := c.runGH(ctx, args...)
	if err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("GetPRStatus", "failed to view "+url, err)
	}

	var resp ghPRStatusResponse
	if err := json.Unmarshal([]byte(output), &resp); err != nil {
		return nil, prerrors.NewGitHubErrorWithCause("GetPRStatus", "failed to parse PR response", err)
	}

	return resp.toPRStatus(), nil
}

// MergePR merges the pull request at the given URL.
func (c *CLIClient) MergePR(ctx context.Context, url string, opts MergeOptions) error {
	args := []string{"pr", "merge", url}

	switch opts.Method {
	case "merge":
		args = append(args, "--merge")
	case "squash":
		args = append(args, "--squash")
	case "rebase":
		args = append(args, "--rebase")
	default:
		// Use repo default if not specified
	}

	c.logDebug("merging PR", "url", url, "method", opts.Method)

	_, err := c.runGH(ctx, args...)
	if err != nil {
		return prerrors.NewGitHubErrorWithCause("MergePR", "failed to merge "+url, err)
	}

	return nil
}

// runGH executes a gh command and returns its output.
func (c *CLIClient) runGH(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)

	// Set GITHUB_TOKEN if configured
	if c.token != "" {
		cmd.Env = append(os.Environ(), "GITHUB_TOKEN="+c.token)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		// Check for specific error patterns to determine retryability
		ghErr := prerrors.NewGitHubError("gh", errMsg)
		if isRetryableGHError(errMsg) {
			ghErr.Retryable = true
		}
		return "", ghErr
	}

	return stdout.String(), nil
}

// logDebug logs a debug message if verbose mode is enabled.
func (c *CLIClient) logDebug(msg string, args ...any) {
	if c.verbose {
		c.logger.Debug(msg, args...)
	}
}

// searchJSONFields returns the list of fields to request from gh search prs.
func searchJSONFields() []string {
	return []string{
		"number",
		"title",
		"url",
		"isDraft",
		"repository",
		"author",
		"updatedAt",
	}
}

// isRetryableGHError checks if a gh CLI error message indicates a retryable error.
func isRetryableGHError(errMsg string) bool {
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"network",
		"502",
		"503",
		"504",
	}

	lowerErr := strings.ToLower(errMsg)
	for _, pattern := range retryablePatterns {
		if strings.Contains(lowerErr, pattern) {
			return true
		}
	}
	return false
}
