package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simasch/pr-finder/pkg/action"
	prerrors "github.com/simasch/pr-finder/pkg/errors"
	"github.com/simasch/pr-finder/pkg/finder"
	"github.com/simasch/pr-finder/pkg/github"
)

// — state ———————————————————————————————————————————————————————————————————

type sessionState int

const (
	stateBrowsing sessionState = iota
	stateInspecting              // mergeability fetch in flight
	stateConfirmMerge            // mergeable: waiting for y/n
	stateMerging                 // merge request in flight
	stateConflict                // conflicting: offer browser open
	stateUnknown                 // mergeability still computing upstream
	stateResult                  // merge outcome shown, waiting for dismissal
)

// ExitNotice is printed when the working set runs dry.
const ExitNotice = "Nothing left — every pull request has been handled."

// — messages ————————————————————————————————————————————————————————————————

type statusFetchedMsg struct {
	url    string
	status *github.PRStatus
	err    error
}

type mergeDoneMsg struct {
	url string
	err error
}

type browserOpenedMsg struct {
	err error
}

// — list item ———————————————————————————————————————————————————————————————

type prItem struct {
	entry  finder.Entry
	styles Styles
	now    time.Time
}

func (i prItem) Title() string {
	pr := i.entry.PR
	title := i.styles.CategoryTag(i.entry.Category) + " " + pr.Ref() + "  " + pr.Title
	if pr.Draft {
		title += " " + i.styles.Draft.Render("[draft]")
	}
	return title
}

func (i prItem) Description() string {
	pr := i.entry.PR
	return fmt.Sprintf("by %s · %s", pr.Author, AgeCompact(pr.UpdatedAt, i.now))
}

// FilterValue feeds the fuzzy filter with everything the entry displays.
func (i prItem) FilterValue() string {
	pr := i.entry.PR
	return pr.Ref() + " " + pr.Title + " " + pr.Author
}

// — model ———————————————————————————————————————————————————————————————————

// PickerModel drives the interactive selection → action → update loop over
// the working set.
type PickerModel struct {
	list    list.Model
	ws      *finder.WorkingSet
	handler *action.Handler
	styles  Styles
	now     time.Time

	state   sessionState
	current finder.Entry
	status  *github.PRStatus
	result  string
	warn    string

	width  int
	height int

	finalNotice string
}

// NewPicker builds the picker over a non-empty working set.
func NewPicker(ws *finder.WorkingSet, handler *action.Handler, styles Styles, now time.Time) PickerModel {
	delegate := list.NewDefaultDelegate()

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Open pull requests"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = styles.Header

	m := PickerModel{
		list:    l,
		ws:      ws,
		handler: handler,
		styles:  styles,
		now:     now,
	}
	m.buildItems()
	return m
}

// buildItems rebuilds the list items from the current working set.
func (m *PickerModel) buildItems() {
	entries := m.ws.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = prItem{entry: e, styles: m.styles, now: m.now}
	}
	m.list.SetItems(items)
}

// FinalNotice returns the message to print after the program exits.
func (m PickerModel) FinalNotice() string {
	return m.finalNotice
}

// — commands ————————————————————————————————————————————————————————————————

func (m PickerModel) inspectCmd(url string) tea.Cmd {
	return func() tea.Msg {
		status, err := m.handler.Inspect(context.Background(), url)
		return statusFetchedMsg{url: url, status: status, err: err}
	}
}

func (m PickerModel) mergeCmd(url string) tea.Cmd {
	return func() tea.Msg {
		err := m.handler.Merge(context.Background(), url)
		return mergeDoneMsg{url: url, err: err}
	}
}

func (m PickerModel) openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg{err: m.handler.OpenInBrowser(url)}
	}
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lw, lh := m.listDimensions()
		m.list.SetSize(lw, lh)
		return m, nil

	case statusFetchedMsg:
		if msg.err != nil {
			// Advisory: the PR stays in the working set.
			m.warn = prerrors.FormatUserError(msg.err)
			m.state = stateBrowsing
			return m, nil
		}
		m.status = msg.status
		switch msg.status.Decision {
		case github.Mergeable:
			m.state = stateConfirmMerge
		case github.Conflicting:
			m.state = stateConflict
		default:
			m.state = stateUnknown
		}
		return m, nil

	case mergeDoneMsg:
		if msg.err != nil {
			m.result = prerrors.FormatUserError(msg.err)
		} else {
			m.result = fmt.Sprintf("Merged %s", m.current.PR.Ref())
		}
		m.state = stateResult
		return m, nil

	case browserOpenedMsg:
		if msg.err != nil {
			m.warn = prerrors.FormatWarning(msg.err)
		}
		return m, nil
	}

	switch m.state {
	case stateConfirmMerge:
		return m.updateConfirmMerge(msg)
	case stateConflict:
		return m.updateConflict(msg)
	case stateUnknown, stateResult:
		return m.updateDismiss(msg)
	case stateInspecting, stateMerging:
		// Network call in flight; only allow a hard quit.
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m.updateBrowsing(msg)
	}
}

func (m PickerModel) updateBrowsing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		// While the filter input is focused, every key belongs to the list.
		if m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		switch key.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.list.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		case "o":
			if e, ok := m.selectedEntry(); ok {
				return m, m.openBrowserCmd(e.PR.URL)
			}
			return m, nil
		case "enter":
			if e, ok := m.selectedEntry(); ok {
				m.current = e
				m.warn = ""
				m.state = stateInspecting
				return m, m.inspectCmd(e.PR.URL)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PickerModel) updateConfirmMerge(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.state = stateMerging
			return m, m.mergeCmd(m.current.PR.URL)
		case "n", "N", "esc":
			// Declined: the PR stays in the list to be re-offered later.
			m.state = stateBrowsing
			return m, nil
		}
	}
	return m, nil
}

func (m PickerModel) updateConflict(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "o":
			return m, m.openBrowserCmd(m.current.PR.URL)
		default:
			return m.completeAction()
		}
	}
	return m, nil
}

func (m PickerModel) updateDismiss(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return m.completeAction()
	}
	return m, nil
}

// completeAction finishes an action pass: the acted-upon PR leaves the
// working set whether or not the action changed anything remotely. An empty
// set ends the session.
func (m PickerModel) completeAction() (tea.Model, tea.Cmd) {
	m.ws.Remove(m.current.PR.URL)
	m.buildItems()
	m.status = nil
	if m.ws.Empty() {
		m.finalNotice = ExitNotice
		return m, tea.Quit
	}
	m.state = stateBrowsing
	return m, nil
}

func (m PickerModel) selectedEntry() (finder.Entry, bool) {
	item, ok := m.list.SelectedItem().(prItem)
	if !ok {
		return finder.Entry{}, false
	}
	return item.entry, true
}

// — view ————————————————————————————————————————————————————————————————————

func (m PickerModel) View() string {
	if m.width == 0 {
		return ""
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.renderDetail())
	base := lipgloss.JoinVertical(lipgloss.Left, body, m.renderHelp())

	switch m.state {
	case stateInspecting:
		return m.renderModalOver(base, "Checking mergeability…", "")
	case stateMerging:
		return m.renderModalOver(base, "Merging…", "")
	case stateConfirmMerge:
		return m.renderConfirmOver(base)
	case stateConflict:
		return m.renderConflictOver(base)
	case stateUnknown:
		return m.renderModalOver(base,
			"Mergeability not known yet",
			"GitHub is still computing the merge state for "+m.current.PR.Ref()+".\nTry again in a moment.\n\nAny key to continue")
	case stateResult:
		return m.renderModalOver(base, "Merge", m.result+"\n\nAny key to continue")
	}
	return base
}

// — layout helpers ——————————————————————————————————————————————————————————

func (m PickerModel) listDimensions() (width, height int) {
	return m.width * 2 / 3, m.height - 2
}

func (m PickerModel) renderDetail() string {
	lw, _ := m.listDimensions()
	dw := m.width - lw
	dh := m.height - 2

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(2).
		PaddingRight(1).
		Width(dw - 1).
		Height(dh)

	e, ok := m.selectedEntry()
	if !ok {
		return style.Render(m.styles.Dim.Render("No pull requests"))
	}
	pr := e.PR

	row := func(lbl, val string) string {
		return m.styles.Label.Render(lbl) + val + "\n"
	}

	contentWidth := (dw - 1) - 2 - 1
	title := pr.Title
	if contentWidth > 1 && len([]rune(title)) > contentWidth {
		title = string([]rune(title)[:contentWidth-1]) + "…"
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(pr.Ref()) + "\n\n")
	b.WriteString(title + "\n\n")
	b.WriteString(row("Context  ", m.styles.CategoryTag(e.Category)))
	b.WriteString(row("Author   ", pr.Author))
	if pr.Draft {
		b.WriteString(row("Draft    ", m.styles.Warn.Render("yes")))
	}
	b.WriteString(row("Updated  ", Age(pr.UpdatedAt, m.now)))
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render(pr.URL) + "\n")

	return style.Render(b.String())
}

func (m PickerModel) renderHelp() string {
	text := "↑/↓ navigate   / filter   enter merge   o open in browser   q quit"
	if m.warn != "" {
		text = m.styles.Warn.Render(m.warn)
	}
	sep := m.styles.Dim.Render(strings.Repeat("─", max(m.width, 0)))
	return sep + "\n" + m.styles.Help.Render(text)
}

func (m PickerModel) renderModalOver(base, title, body string) string {
	var b strings.Builder
	b.WriteString(m.styles.Bold.Render(title))
	if body != "" {
		b.WriteString("\n\n" + body)
	}
	modal := m.styles.Modal.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("0")),
	)
}

func (m PickerModel) renderConfirmOver(base string) string {
	var b strings.Builder
	b.WriteString(m.styles.Bold.Render("Merge pull request") + "\n\n")
	b.WriteString(m.current.PR.Ref() + "\n")
	b.WriteString(m.styles.Dim.Render(m.current.PR.Title) + "\n\n")
	if m.status != nil && m.status.MergeStateStatus != "" {
		b.WriteString(m.styles.Label.Render("State    ") + m.status.MergeStateStatus + "\n\n")
	}
	b.WriteString(m.styles.Dim.Render("y/Enter to merge · n/Esc to keep it"))
	modal := m.styles.Modal.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("0")),
	)
}

func (m PickerModel) renderConflictOver(base string) string {
	var b strings.Builder
	b.WriteString(m.styles.Err.Render("Merge conflict") + "\n\n")
	b.WriteString(m.current.PR.Ref() + "\n")
	b.WriteString(m.styles.Dim.Render(m.current.PR.Title) + "\n\n")
	b.WriteString("This pull request has conflicts and cannot be merged here.\n")
	b.WriteString("Resolve them on GitHub.\n\n")
	b.WriteString(m.styles.Dim.Render("o open in browser · any other key to continue"))
	modal := m.styles.Modal.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("0")),
	)
}

// RunPicker runs the interactive session over the working set and returns
// the final notice to print, if any.
func RunPicker(ws *finder.WorkingSet, handler *action.Handler, styles Styles) (string, error) {
	m := NewPicker(ws, handler, styles, time.Now().UTC())
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(PickerModel); ok {
		return fm.FinalNotice(), nil
	}
	return "", nil
}
