package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simasch/pr-finder/pkg/action"
	prerrors "github.com/simasch/pr-finder/pkg/errors"
	"github.com/simasch/pr-finder/pkg/finder"
	"github.com/simasch/pr-finder/pkg/github"
)

type mockActionClient struct {
	github.Client

	status    *github.PRStatus
	statusErr error
	mergeErr  error
	merged    []string
}

func (m *mockActionClient) GetPRStatus(ctx context.Context, url string) (*github.PRStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.status, nil
}

func (m *mockActionClient) MergePR(ctx context.Context, url string, opts github.MergeOptions) error {
	m.merged = append(m.merged, url)
	return m.mergeErr
}

func testEntry(n int) github.PullRequest {
	return github.PullRequest{
		URL:          "https://github.com/o/r/pull/" + string(rune('0'+n)),
		RepoFullName: "o/r",
		Number:       n,
		Title:        "Change something",
		Author:       "octocat",
		UpdatedAt:    time.Now().Add(-time.Hour),
	}
}

func newTestPicker(t *testing.T, client *mockActionClient, prs ...github.PullRequest) PickerModel {
	t.Helper()
	ws := finder.NewWorkingSet(finder.Aggregate(finder.RawLists{Authored: prs}))
	require.False(t, ws.Empty())

	m := NewPicker(ws, action.NewHandler(client, "squash"), NewStyles(false), time.Now().UTC())
	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(PickerModel)
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func advance(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	next, ok := model.(PickerModel)
	require.True(t, ok)
	return next, cmd
}

func TestPickerItemRendering(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := prItem{
		entry: finder.Entry{
			PR: github.PullRequest{
				RepoFullName: "octocat/hello",
				Number:       7,
				Title:        "Add feature",
				Author:       "hubot",
				Draft:        true,
				UpdatedAt:    now.Add(-3 * time.Hour),
			},
			Category: finder.CategoryReviewRequested,
		},
		styles: NewStyles(false),
		now:    now,
	}

	title := item.Title()
	assert.Contains(t, title, "[review]")
	assert.Contains(t, title, "octocat/hello#7")
	assert.Contains(t, title, "Add feature")
	assert.Contains(t, title, "[draft]")

	assert.Equal(t, "by hubot · 3h", item.Description())

	fv := item.FilterValue()
	assert.Contains(t, fv, "octocat/hello#7")
	assert.Contains(t, fv, "Add feature")
	assert.Contains(t, fv, "hubot")
}

func TestPickerMergeFlow(t *testing.T) {
	client := &mockActionClient{
		status: &github.PRStatus{Number: 1, Decision: github.Mergeable, MergeStateStatus: "CLEAN"},
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	// Selecting a PR starts the mergeability inspection.
	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInspecting, m.state)
	require.NotNil(t, cmd)

	// Mergeable result opens the confirmation.
	m, _ = advance(t, m, cmd())
	require.Equal(t, stateConfirmMerge, m.state)

	// Confirming runs the merge.
	m, cmd = advance(t, m, keyMsg('y'))
	require.Equal(t, stateMerging, m.state)
	require.NotNil(t, cmd)

	m, _ = advance(t, m, cmd())
	require.Equal(t, stateResult, m.state)
	assert.Equal(t, []string{testEntry(1).URL}, client.merged)

	// Dismissing the result removes the PR and returns to browsing.
	m, _ = advance(t, m, keyMsg(' '))
	assert.Equal(t, stateBrowsing, m.state)
	assert.Equal(t, 1, m.ws.Len())
}

func TestPickerDeclineKeepsPR(t *testing.T) {
	client := &mockActionClient{
		status: &github.PRStatus{Number: 1, Decision: github.Mergeable},
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())
	require.Equal(t, stateConfirmMerge, m.state)

	m, _ = advance(t, m, keyMsg('n'))
	assert.Equal(t, stateBrowsing, m.state)

	// Declining is not a completed action: the PR stays available.
	assert.Equal(t, 2, m.ws.Len())
	assert.Empty(t, client.merged)
}

func TestPickerConflictPathRemovesAfterDismissal(t *testing.T) {
	client := &mockActionClient{
		status: &github.PRStatus{Number: 1, Decision: github.Conflicting, MergeStateStatus: "DIRTY"},
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())
	require.Equal(t, stateConflict, m.state)

	m, _ = advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateBrowsing, m.state)
	assert.Equal(t, 1, m.ws.Len())
	assert.Empty(t, client.merged)
}

func TestPickerUnknownPathRemovesAfterDismissal(t *testing.T) {
	client := &mockActionClient{
		status: &github.PRStatus{Number: 1, Decision: github.Unknown},
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())
	require.Equal(t, stateUnknown, m.state)

	m, _ = advance(t, m, keyMsg(' '))
	assert.Equal(t, stateBrowsing, m.state)
	assert.Equal(t, 1, m.ws.Len())
}

func TestPickerInspectFailureKeepsPR(t *testing.T) {
	client := &mockActionClient{
		statusErr: prerrors.NewGitHubErrorWithStatus("GetPRStatus", 503, "unavailable"),
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())

	// Inspection failure is advisory: back to browsing, nothing removed.
	assert.Equal(t, stateBrowsing, m.state)
	assert.Equal(t, 2, m.ws.Len())
	assert.NotEmpty(t, m.warn)
}

func TestPickerEmptySetExits(t *testing.T) {
	client := &mockActionClient{
		status: &github.PRStatus{Number: 1, Decision: github.Mergeable},
	}
	m := newTestPicker(t, client, testEntry(1))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())
	m, cmd = advance(t, m, keyMsg('y'))
	m, _ = advance(t, m, cmd())
	require.Equal(t, stateResult, m.state)

	// Dismissing the last PR's result ends the session with the notice.
	m, cmd = advance(t, m, keyMsg(' '))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, ExitNotice, m.FinalNotice())
}

func TestPickerMergeFailureIsReported(t *testing.T) {
	client := &mockActionClient{
		status:   &github.PRStatus{Number: 1, Decision: github.Mergeable},
		mergeErr: prerrors.NewGitHubErrorWithStatus("MergePR", 405, "not mergeable"),
	}
	m := newTestPicker(t, client, testEntry(1), testEntry(2))

	m, cmd := advance(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = advance(t, m, cmd())
	m, cmd = advance(t, m, keyMsg('y'))
	m, _ = advance(t, m, cmd())

	require.Equal(t, stateResult, m.state)
	assert.Contains(t, m.result, "Merge failed")

	// A failed merge is still a completed pass; the PR leaves the set.
	m, _ = advance(t, m, keyMsg(' '))
	assert.Equal(t, 1, m.ws.Len())
}

func TestPickerQuitKeys(t *testing.T) {
	client := &mockActionClient{}
	m := newTestPicker(t, client, testEntry(1))

	_, cmd := advance(t, m, keyMsg('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = advance(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
