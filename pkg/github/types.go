// Package github provides the GitHub integration for pr-finder.
//
// This package implements the Client interface for the operations the finder
// needs: identity lookup, open-PR search by qualifier, push-access repository
// listing, mergeability inspection and merge. Two implementations exist:
// APIClient (GitHub REST API via go-github) and CLIClient (wrapping the gh CLI).
package github

import (
	"strconv"
	"strings"
	"time"

	prerrors "github.com/simasch/pr-finder/pkg/errors"
)

// AuthMethod represents the authentication method for GitHub.
type AuthMethod string

const (
	// AuthToken uses a personal access token for authentication.
	AuthToken AuthMethod = "token"
	// AuthOAuth uses OAuth device flow for authentication.
	AuthOAuth AuthMethod = "oauth"
	// AuthGHCLI uses the gh CLI's stored credentials.
	AuthGHCLI AuthMethod = "gh_cli"
)

// PullRequest is a single open pull request as returned by a search query.
// The URL is the identity key: two results with the same URL are the same PR.
type PullRequest struct {
	URL          string    `json:"url"`
	RepoFullName string    `json:"repository"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Draft        bool      `json:"isDraft"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Ref returns the compact "owner/repo#number" form used in listings.
func (pr PullRequest) Ref() string {
	return pr.RepoFullName + "#" + strconv.Itoa(pr.Number)
}

// Repository is a repository descriptor from the push-access listing.
type Repository struct {
	FullName   string `json:"full_name"`
	Archived   bool   `json:"archived"`
	OpenIssues int    `json:"open_issues_count"` // Open issues + open PRs
}

// MergeDecision is the upstream-computed mergeability of a pull request.
type MergeDecision string

const (
	// Mergeable means the PR can be merged without conflicts.
	Mergeable MergeDecision = "MERGEABLE"
	// Conflicting means the PR has merge conflicts.
	Conflicting MergeDecision = "CONFLICTING"
	// Unknown means GitHub is still computing mergeability.
	Unknown MergeDecision = "UNKNOWN"
)

// decisionFromString maps a gh/API mergeable string to a MergeDecision.
func decisionFromString(s string) MergeDecision {
	switch strings.ToUpper(s) {
	case "MERGEABLE":
		return Mergeable
	case "CONFLICTING":
		return Conflicting
	default:
		return Unknown
	}
}

// PRStatus is the live state of a pull request fetched before acting on it.
type PRStatus struct {
	Number           int           `json:"number"`
	Title            string        `json:"title"`
	Decision         MergeDecision `json:"mergeable"`
	MergeStateStatus string        `json:"mergeStateStatus"` // "CLEAN", "DIRTY", "BLOCKED", etc.
}

// SearchQuery selects open pull requests by their relationship to a user.
// Exactly one of Author, ReviewRequested, Assignee or Repos should be set.
type SearchQuery struct {
	Author          string   // PRs authored by this login
	ReviewRequested string   // PRs where this login's review is requested
	Assignee        string   // PRs assigned to this login
	Repos           []string // PRs in any of these owner/repo names
	Owner           string   // Optional owner/org restriction
	Limit           int      // Max results (default 100)
}

// MergeOptions holds options for merging a pull request.
type MergeOptions struct {
	Method string // "merge", "squash", "rebase" (empty uses repo default)
}

// ParsePRURL splits a pull request URL of the form
// https://github.com/owner/repo/pull/123 into its parts.
func ParsePRURL(url string) (owner, repo string, number int, err error) {
	trimmed := strings.TrimPrefix(url, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	parts := strings.Split(strings.TrimSuffix(trimmed, "/"), "/")
	// host/owner/repo/pull/number
	if len(parts) != 5 || parts[3] != "pull" {
		return "", "", 0, prerrors.NewGitHubError("ParsePRURL", "invalid pull request URL: "+url)
	}
	number, convErr := strconv.Atoi(parts[4])
	if convErr != nil {
		return "", "", 0, prerrors.NewGitHubErrorWithCause("ParsePRURL", "invalid pull request number in "+url, convErr)
	}
	return parts[1], parts[2], number, nil
}

// ghSearchPR mirrors the fields we request from gh search prs --json.
type ghSearchPR struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	IsDraft    bool   `json:"isDraft"`
	Repository struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// toPullRequest converts a gh search result to a PullRequest.
func (r *ghSearchPR) toPullRequest() PullRequest {
	return PullRequest{
		URL:          r.URL,
		RepoFullName: r.Repository.NameWithOwner,
		Number:       r.Number,
		Title:        r.Title,
		Author:       r.Author.Login,
		Draft:        r.IsDraft,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ghPRStatusResponse mirrors the JSON response from gh pr view.
type ghPRStatusResponse struct {
	Number           int    `json:"number"`
	Title            string `json:"title"`
	Mergeable        string `json:"mergeable"`
	MergeStateStatus string `json:"mergeStateStatus"`
}

// toPRStatus converts a gh pr view response to a PRStatus.
func (r *ghPRStatusResponse) toPRStatus() *PRStatus {
	return &PRStatus{
		Number:           r.Number,
		Title:            r.Title,
		Decision:         decisionFromString(r.Mergeable),
		MergeStateStatus: strings.ToUpper(r.MergeStateStatus),
	}
}
