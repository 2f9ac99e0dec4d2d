package errors

import (
	"strings"
	"testing"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "config error with field",
			err:  NewConfigError("finder.limit", "must be positive"),
			contains: []string{
				"Configuration error in 'finder.limit'",
				"must be positive",
				"~/.config/pr-finder/config.toml",
			},
		},
		{
			name: "github auth error",
			err:  NewGitHubErrorWithStatus("CurrentLogin", 401, "bad credentials"),
			contains: []string{
				"GitHub error during CurrentLogin",
				"gh auth login",
				"GITHUB_TOKEN",
			},
		},
		{
			name: "github permission error",
			err:  NewGitHubErrorWithStatus("MergePR", 403, "forbidden"),
			contains: []string{
				"Permission denied",
				"'repo' scope",
			},
		},
		{
			name: "github not found",
			err:  NewGitHubErrorWithStatus("GetPRStatus", 404, "not found"),
			contains: []string{
				"Resource not found",
				"pull request still exists",
			},
		},
		{
			name: "rate limit",
			err:  NewGitHubErrorWithStatus("SearchOpenPRs", 429, "rate limited"),
			contains: []string{
				"Rate limit exceeded",
				"--limit",
			},
		},
		{
			name: "server error",
			err:  NewGitHubErrorWithStatus("SearchOpenPRs", 503, "unavailable"),
			contains: []string{
				"GitHub server error",
				"githubstatus.com",
			},
		},
		{
			name:     "merge action error is single line",
			err:      NewActionError("merge", "https://github.com/o/r/pull/3", "conflict"),
			contains: []string{"Merge failed: conflict", "https://github.com/o/r/pull/3"},
		},
		{
			name:     "inspect action error mentions the list",
			err:      NewActionError("inspect", "https://github.com/o/r/pull/3", "timeout"),
			contains: []string{"Could not check mergeability", "left in the list"},
		},
		{
			name:     "generic error passes through",
			err:      New("something odd"),
			contains: []string{"something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUserError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatUserError() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestFormatUserErrorNil(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestFormatActionErrorIsSingleLine(t *testing.T) {
	for _, step := range []string{"inspect", "merge", "browse"} {
		err := NewActionError(step, "https://github.com/o/r/pull/9", "boom")
		got := FormatUserError(err)
		if strings.Contains(got, "\n") {
			t.Errorf("FormatUserError(%s action) spans multiple lines: %q", step, got)
		}
	}
}

func TestFormatWarning(t *testing.T) {
	if got := FormatWarning(nil); got != "" {
		t.Errorf("FormatWarning(nil) = %q, want empty", got)
	}

	got := FormatWarning(New("query failed"))
	if got != "Warning: query failed" {
		t.Errorf("FormatWarning() = %q", got)
	}
}
