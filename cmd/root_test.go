package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simasch/pr-finder/pkg/config"
	prerrors "github.com/simasch/pr-finder/pkg/errors"
	"github.com/simasch/pr-finder/pkg/github"
)

type mockGHClient struct {
	github.Client

	isAuthenticated bool
	login           string
	loginErr        error

	searchFunc    func(ctx context.Context, q github.SearchQuery) ([]github.PullRequest, error)
	listReposFunc func(ctx context.Context, owner string) ([]github.Repository, error)
}

func (m *mockGHClient) IsAuthenticated() bool {
	return m.isAuthenticated
}

func (m *mockGHClient) CurrentLogin(ctx context.Context) (string, error) {
	return m.login, m.loginErr
}

func (m *mockGHClient) SearchOpenPRs(ctx context.Context, q github.SearchQuery) ([]github.PullRequest, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockGHClient) ListPushableRepos(ctx context.Context, owner string) ([]github.Repository, error) {
	if m.listReposFunc != nil {
		return m.listReposFunc(ctx, owner)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Finder: config.FinderConfig{Limit: 100, Interactive: "never"},
		GitHub: config.GitHubConfig{AuthMethod: "gh_cli"},
		UI:     config.UIConfig{Color: "never"},
	}
}

func TestRunFindUnauthenticated(t *testing.T) {
	client := &mockGHClient{isAuthenticated: false}

	var buf bytes.Buffer
	err := runFind(context.Background(), testConfig(), client, &buf)

	require.Error(t, err)
	assert.True(t, prerrors.IsGitHubError(err))
}

func TestRunFindLoginFailure(t *testing.T) {
	client := &mockGHClient{
		isAuthenticated: true,
		loginErr:        prerrors.NewGitHubErrorWithStatus("CurrentLogin", 401, "bad credentials"),
	}

	var buf bytes.Buffer
	err := runFind(context.Background(), testConfig(), client, &buf)
	require.Error(t, err)
}

func TestRunFindPrintsReport(t *testing.T) {
	client := &mockGHClient{
		isAuthenticated: true,
		login:           "octocat",
		searchFunc: func(ctx context.Context, q github.SearchQuery) ([]github.PullRequest, error) {
			if q.Author == "octocat" {
				return []github.PullRequest{
					{
						URL:          "https://github.com/octocat/hello/pull/1",
						RepoFullName: "octocat/hello",
						Number:       1,
						Title:        "Add feature",
						Author:       "octocat",
						UpdatedAt:    time.Now().Add(-time.Hour),
					},
				}, nil
			}
			return nil, nil
		},
	}

	var buf bytes.Buffer
	err := runFind(context.Background(), testConfig(), client, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Authored (1)")
	assert.Contains(t, out, "octocat/hello#1")
	assert.Contains(t, out, "Total: 1 open pull request(s)")
}

func TestRunFindZeroPRs(t *testing.T) {
	client := &mockGHClient{
		isAuthenticated: true,
		login:           "octocat",
	}

	var buf bytes.Buffer
	err := runFind(context.Background(), testConfig(), client, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Total: 0 open pull request(s)")
}

func TestRunFindDegradedSourcesStillReport(t *testing.T) {
	client := &mockGHClient{
		isAuthenticated: true,
		login:           "octocat",
		searchFunc: func(ctx context.Context, q github.SearchQuery) ([]github.PullRequest, error) {
			if q.Assignee != "" {
				return nil, prerrors.NewGitHubErrorWithStatus("SearchOpenPRs", 503, "unavailable")
			}
			if q.Author != "" {
				return []github.PullRequest{
					{
						URL:          "https://github.com/octocat/hello/pull/2",
						RepoFullName: "octocat/hello",
						Number:       2,
						Title:        "Fix bug",
						Author:       "octocat",
						UpdatedAt:    time.Now(),
					},
				}, nil
			}
			return nil, nil
		},
	}

	var buf bytes.Buffer
	err := runFind(context.Background(), testConfig(), client, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Authored (1)")
	assert.Contains(t, out, "Assigned (0)")
}

func TestInteractiveEnabled(t *testing.T) {
	cfg := testConfig()

	cfg.Finder.Interactive = "always"
	assert.True(t, interactiveEnabled(cfg))

	cfg.Finder.Interactive = "never"
	assert.False(t, interactiveEnabled(cfg))
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() {
		flagLimit = 0
		flagOwner = ""
		flagInteractive = false
		flagNoInteractive = false
	})

	// A throwaway command bound to the same flag variables, so the shared
	// rootCmd flag state stays untouched.
	tmp := &cobra.Command{Use: "tmp"}
	tmp.Flags().IntVarP(&flagLimit, "limit", "L", 0, "")
	tmp.Flags().StringVarP(&flagOwner, "owner", "o", "", "")
	tmp.Flags().BoolVar(&flagInteractive, "interactive", false, "")
	tmp.Flags().BoolVar(&flagNoInteractive, "no-interactive", false, "")

	require.NoError(t, tmp.Flags().Set("limit", "42"))
	require.NoError(t, tmp.Flags().Set("owner", "myorg"))
	require.NoError(t, tmp.Flags().Set("no-interactive", "true"))

	cfg := testConfig()
	applyFlags(tmp, cfg)

	assert.Equal(t, 42, cfg.Finder.Limit)
	assert.Equal(t, "myorg", cfg.Finder.Owner)
	assert.Equal(t, "never", cfg.Finder.Interactive)
}
