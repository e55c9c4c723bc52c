// Package tui is the interactive todo view. It renders whatever the store
// publishes and turns key presses into syncer calls.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/syncer"
	"github.com/idilsaglam/todosync/internal/ui"
)

// snapshotMsg carries a store snapshot into the event loop.
type snapshotMsg struct{ snap store.Snapshot }

// loadedMsg reports the outcome of the initial fetch or a refresh.
type loadedMsg struct{ err error }

// resultMsg reports a finished mutation as a user-facing notification.
type resultMsg struct {
	text string
	err  error
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// listItem adapts a Todo to bubbles/list.Item
type listItem struct{ model.Todo }

func (i listItem) FilterValue() string { return i.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	fmt.Fprintln(w, prefix+ui.TodoLine(it.Todo))
}

// Model is the Bubble Tea model for the todo view.
type Model struct {
	ctx  context.Context
	svc  *syncer.Service
	keys keyMap

	list    list.Model
	ti      textinput.Model // shared text input (used for add & edit)
	spinner spinner.Model

	snap     store.Snapshot
	loading  bool
	loadErr  error
	inflight int

	mode     mode
	editID   int
	inputErr string

	status    string
	statusErr bool

	width, height int
}

// New builds the view for svc. ctx is passed to every remote call.
func New(ctx context.Context, svc *syncer.Service) Model {
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.Current().Accent

	m := Model{
		ctx:     ctx,
		svc:     svc,
		keys:    keys,
		list:    l,
		ti:      ti,
		spinner: sp,
		loading: true,
		width:   80,
		height:  24,
	}
	m.applySnapshot(svc.Store().Snapshot())
	return m
}

// Init starts the spinner and the initial fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(false))
}

func (m Model) load(force bool) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if force {
			return loadedMsg{err: svc.Refresh(ctx)}
		}
		return loadedMsg{err: svc.Load(ctx)}
	}
}

// mutate runs fn off the event loop and reports its outcome.
func (m *Model) mutate(fn func(context.Context, *syncer.Service) (string, error)) tea.Cmd {
	m.inflight++
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, err := fn(ctx, svc)
		return resultMsg{text: text, err: err}
	}
}

// setFilter goes through a command because the store notifies this model
// through Program.Send, which must not be called from inside Update.
func (m Model) setFilter(f model.Filter) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		svc.SetFilter(f)
		return nil
	}
}

func (m *Model) applySnapshot(snap store.Snapshot) tea.Cmd {
	m.snap = snap
	visible := snap.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, listItem{t})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.Todo, ok
}

func (m *Model) notify(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// Update and View implement Bubble Tea's Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		return m, m.applySnapshot(msg.snap)

	case loadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.notify("Error loading todos: "+msg.err.Error(), true)
		}
		return m, nil

	case resultMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		if msg.err != nil {
			m.notify(msg.text+": "+msg.err.Error(), true)
		} else {
			m.notify(msg.text, false)
		}
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		if next, cmd, handled := m.handleKey(k); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(k, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		cmd := m.mutate(func(ctx context.Context, svc *syncer.Service) (string, error) {
			updated, err := svc.Toggle(ctx, t.ID)
			if err != nil {
				return "Failed to update todo", err
			}
			state := "active"
			if updated.Completed {
				state = "completed"
			}
			return "Todo marked as " + state, nil
		})
		return m, cmd, true

	case key.Matches(k, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		cmd := m.mutate(func(ctx context.Context, svc *syncer.Service) (string, error) {
			if err := svc.Delete(ctx, t.ID); err != nil {
				return "Failed to delete todo", err
			}
			return "Todo has been removed successfully", nil
		})
		return m, cmd, true

	case key.Matches(k, m.keys.Add):
		m.mode = adding
		m.inputErr = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "Add a new todo..."
		cmd := m.ti.Focus()
		return m, cmd, true

	case key.Matches(k, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		if t.Completed {
			m.notify("Completed todos cannot be edited", true)
			return m, nil, true
		}
		m.mode = editing
		m.editID = t.ID
		m.inputErr = ""
		m.ti.SetValue(t.Title)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit todo title..."
		cmd := m.ti.Focus()
		return m, cmd, true

	case key.Matches(k, m.keys.Filter):
		return m, m.setFilter(m.snap.Filter.Next()), true
	case key.Matches(k, m.keys.All):
		return m, m.setFilter(model.FilterAll), true
	case key.Matches(k, m.keys.Active):
		return m, m.setFilter(model.FilterActive), true
	case key.Matches(k, m.keys.Completed):
		return m, m.setFilter(model.FilterCompleted), true

	case key.Matches(k, m.keys.Refresh):
		m.loading = true
		return m, m.load(true), true
	}
	return m, nil, false
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			m.mode = browsing
			m.ti.SetValue("")
			m.ti.Blur()
			return m, nil

		case tea.KeyEnter:
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Please enter a title"
				return m, nil
			}
			var cmd tea.Cmd
			if m.mode == adding {
				cmd = m.mutate(func(ctx context.Context, svc *syncer.Service) (string, error) {
					if _, err := svc.Create(ctx, title); err != nil {
						return "Failed to create todo", err
					}
					return "Todo created successfully", nil
				})
			} else {
				id := m.editID
				cmd = m.mutate(func(ctx context.Context, svc *syncer.Service) (string, error) {
					if _, err := svc.Rename(ctx, id, title); err != nil {
						return "Failed to update todo", err
					}
					return "Todo title has been updated successfully", nil
				})
			}
			m.mode = browsing
			m.ti.SetValue("")
			m.ti.Blur()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	header := ui.Header(m.snap.Todos, m.snap.Filter)
	if m.loading || m.inflight > 0 {
		header += "  " + m.spinner.View()
	}

	var body string
	switch {
	case m.loading && len(m.snap.Todos) == 0:
		body = t.Muted.Render("Loading todos...")
	case m.loadErr != nil && len(m.snap.Todos) == 0:
		body = t.Error.Render("Error loading todos")
	case len(m.list.Items()) == 0:
		body = t.Muted.Render("No todos found")
	default:
		listHeight := m.height - 6
		if m.mode != browsing {
			listHeight -= 3
		}
		if listHeight < 3 {
			listHeight = 3
		}
		m.list.SetSize(m.width-4, listHeight)
		body = m.list.View()
	}

	parts := []string{header, "", body}
	if m.mode != browsing {
		title := "Add new todo"
		if m.mode == editing {
			title = "Edit todo"
		}
		if m.inputErr != "" {
			title += " - " + t.Error.Render(m.inputErr)
		}
		parts = append(parts, "", title, m.ti.View())
	}
	if m.status != "" {
		style := t.Success
		if m.statusErr {
			style = t.Error
		}
		parts = append(parts, "", style.Render(m.status))
	}
	return ui.Panel(strings.Join(parts, "\n"))
}

// Status returns the last notification and whether it was an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Err returns the initial load error, if any.
func (m Model) Err() error { return m.loadErr }
