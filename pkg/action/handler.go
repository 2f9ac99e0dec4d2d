// Package action performs the merge action on a selected pull request:
// inspecting live mergeability, merging, and opening the PR externally.
package action

import (
	"context"

	"github.com/cli/browser"

	prerrors "github.com/simasch/pr-finder/pkg/errors"
	"github.com/simasch/pr-finder/pkg/github"
)

// Handler acts on a selected pull request. It keeps no local state; every
// call goes straight to the GitHub client.
type Handler struct {
	client      github.Client
	mergeMethod string
}

// NewHandler creates a Handler. mergeMethod may be empty to use the
// repository default.
func NewHandler(client github.Client, mergeMethod string) *Handler {
	return &Handler{client: client, mergeMethod: mergeMethod}
}

// Inspect fetches the live mergeability state for a pull request URL.
// A failure here is advisory: the caller reports it and leaves the PR in
// the working set.
func (h *Handler) Inspect(ctx context.Context, url string) (*github.PRStatus, error) {
	status, err := h.client.GetPRStatus(ctx, url)
	if err != nil {
		return nil, prerrors.NewActionErrorWithCause("inspect", url, "mergeability check failed", err)
	}
	return status, nil
}

// Merge attempts to merge the pull request. A failure is advisory; the user
// is pointed at GitHub to resolve it manually.
func (h *Handler) Merge(ctx context.Context, url string) error {
	err := h.client.MergePR(ctx, url, github.MergeOptions{Method: h.mergeMethod})
	if err != nil {
		return prerrors.NewActionErrorWithCause("merge", url, "merge attempt failed", err)
	}
	return nil
}

// OpenInBrowser opens the pull request in the user's browser. Fire and
// forget: a failure is reported but changes nothing.
func (h *Handler) OpenInBrowser(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return prerrors.NewActionErrorWithCause("browse", url, "could not open browser", err)
	}
	return nil
}
