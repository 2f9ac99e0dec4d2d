package finder

import "github.com/simasch/pr-finder/pkg/github"

// Entry is a pull request together with the category it was assigned to.
type Entry struct {
	PR       github.PullRequest
	Category Category
}

// WorkingSet is the ordered sequence of entries still pending user action in
// an interactive session. It only ever shrinks: entries are removed after the
// user acts on them, and the set never regrows mid-session.
type WorkingSet struct {
	entries []Entry
}

// NewWorkingSet flattens the aggregated categories, in priority order, into
// a working set.
func NewWorkingSet(agg *Aggregated) *WorkingSet {
	ws := &WorkingSet{}
	for _, c := range Categories {
		for _, pr := range agg.Category(c) {
			ws.entries = append(ws.entries, Entry{PR: pr, Category: c})
		}
	}
	return ws
}

// Entries returns the remaining entries in order.
func (ws *WorkingSet) Entries() []Entry {
	return ws.entries
}

// Len returns the number of remaining entries.
func (ws *WorkingSet) Len() int {
	return len(ws.entries)
}

// Empty reports whether nothing is left to act on.
func (ws *WorkingSet) Empty() bool {
	return len(ws.entries) == 0
}

// Remove drops the entry with the given URL. Removal is idempotent: removing
// a URL that is not present is a no-op.
func (ws *WorkingSet) Remove(url string) {
	for i, e := range ws.entries {
		if e.PR.URL == url {
			ws.entries = append(ws.entries[:i], ws.entries[i+1:]...)
			return
		}
	}
}
