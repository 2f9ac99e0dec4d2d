package github

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"github.com/simasch/pr-finder/pkg/config"
	prerrors "github.com/simasch/pr-finder/pkg/errors"
)

// Client defines the interface for GitHub operations used by the finder.
// Implementations include CLIClient (wrapping gh CLI) and APIClient (using GitHub REST API).
type Client interface {
	// IsAuthenticated checks if the client is authenticated with GitHub.
	IsAuthenticated() bool

	// CurrentLogin returns the authenticated user's login.
	CurrentLogin(ctx context.Context) (string, error)

	// SearchOpenPRs returns open pull requests matching the query,
	// capped at the query limit.
	SearchOpenPRs(ctx context.Context, q SearchQuery) ([]PullRequest, error)

	// ListPushableRepos lists repositories where the current user has push
	// access (owner, collaborator or organization-member affiliation),
	// excluding archived repositories and repositories without open
	// issues/PRs. A non-empty owner restricts results to that owner.
	ListPushableRepos(ctx context.Context, owner string) ([]Repository, error)

	// GetPRStatus fetches live mergeability state for a pull request URL.
	GetPRStatus(ctx context.Context, url string) (*PRStatus, error)

	// MergePR merges the pull request at the given URL.
	MergePR(ctx context.Context, url string, opts MergeOptions) error
}

// Compile-time checks that implementations satisfy the Client interface.
var (
	_ Client = (*CLIClient)(nil)
	_ Client = (*APIClient)(nil)
)

// NewClient creates a GitHub client based on the provided configuration.
//
// Token resolution order:
//  1. GITHUB_TOKEN environment variable
//  2. PR_FINDER_GITHUB_TOKEN environment variable
//  3. Token from config file (github.token)
//  4. Cached OAuth token (keychain or file)
//  5. OAuth device flow (if client_id configured)
//  6. Fall back to gh CLI
func NewClient(cfg *config.GitHubConfig, verbose bool) (Client, error) {
	if cfg == nil {
		return nil, prerrors.NewGitHubError("NewClient", "github config is required")
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("PR_FINDER_GITHUB_TOKEN")
	}
	if token == "" {
		token = cfg.Token
	}

	switch AuthMethod(cfg.AuthMethod) {
	case AuthToken:
		if token == "" {
			return nil, prerrors.NewGitHubError("NewClient",
				"token auth requires GITHUB_TOKEN, PR_FINDER_GITHUB_TOKEN env var, or github.token in config")
		}
		return NewAPIClient(token, verbose)

	case AuthOAuth:
		return newOAuthClient(cfg, verbose)

	case AuthGHCLI, "":
		// Default: prefer API client if we have a token, fall back to CLI
		if token != "" {
			return NewAPIClient(token, verbose)
		}
		return NewCLIClient(verbose)

	default:
		return nil, prerrors.NewGitHubError("NewClient", "unknown auth method: "+cfg.AuthMethod)
	}
}

// newOAuthClient creates a client using OAuth device flow with token caching.
func newOAuthClient(cfg *config.GitHubConfig, verbose bool) (Client, error) {
	cache := NewTokenCache()

	// Try cached token first
	cachedToken, err := cache.Get()
	if err != nil && verbose {
		slog.Debug("failed to read cached token", "error", err)
	}

	if cachedToken != nil && cachedToken.Valid() {
		if verbose {
			slog.Debug("using cached OAuth token")
		}
		return NewAPIClient(cachedToken.AccessToken, verbose)
	}

	// No valid cached token - need to do device flow
	if cfg.ClientID == "" {
		return nil, prerrors.NewGitHubError("NewClient",
			"oauth auth requires github.client_id in config; alternatively use gh_cli auth method")
	}

	oauthCfg := OAuthConfig{
		ClientID: cfg.ClientID,
		Scopes:   []string{"repo", "read:org"},
	}

	apiToken, err := DeviceAuth(context.Background(), oauthCfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken: apiToken.Token,
		TokenType:   apiToken.Type,
	}

	if cacheErr := cache.Set(token); cacheErr != nil {
		if verbose {
			slog.Debug("failed to cache token", "error", cacheErr)
		}
	} else if verbose {
		slog.Debug("cached OAuth token for future use")
	}

	return NewAPIClient(token.AccessToken, verbose)
}
