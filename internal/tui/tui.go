// Package tui is the interactive task board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/taskdesk/internal/form"
	"github.com/rogersnm/taskdesk/internal/id"
	"github.com/rogersnm/taskdesk/internal/markdown"
	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/notify"
	"github.com/rogersnm/taskdesk/internal/view"
	"github.com/rogersnm/taskdesk/internal/viewmodel"
)

type mode int

const (
	modeTable mode = iota
	modeSearch
	modeForm
	modeConfirm
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	widths     = []int{6, 40, 12, 10}
)

const helpLine = "1-4 sort · / search · s status · p priority · c clear · n new · e edit · d delete · r refresh · q quit"

type snapshotMsg struct {
	token   uint64
	records []model.Record
	err     error
}

type mutationMsg struct {
	err error
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx    context.Context
	vm     *viewmodel.ListViewModel
	latest *notify.Latest

	mode    mode
	table   table.Model
	search  textinput.Model
	rows    []model.Record
	proj    view.Projection
	loading bool
	status  *notify.Message

	form      *huh.Form
	formTitle string
	values    *form.Values
	editing   *model.Record
	// submitting is set while a create or update from the form is in flight;
	// values and editing are kept until it succeeds.
	submitting bool
	confirm    *bool
	deleteID   int
}

// New builds the board. latest must be the Notifier vm reports to.
func New(ctx context.Context, vm *viewmodel.ListViewModel, latest *notify.Latest) Model {
	t := table.New(
		table.WithColumns(columns(view.SortSpec{})),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := textinput.New()
	s.Placeholder = "search tasks"
	s.Prompt = "/ "
	s.SetValue(vm.Query().Search)

	m := Model{ctx: ctx, vm: vm, latest: latest, table: t, search: s}
	m.refreshRows()
	return m
}

func columns(sort view.SortSpec) []table.Column {
	headers := markdown.Headers(sort)
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	return cols
}

func (m Model) fetch() tea.Cmd {
	token := m.vm.BeginRefresh()
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		recs, err := vm.Fetch(ctx)
		return snapshotMsg{token: token, records: recs, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// refreshRows recomputes the projection and pushes it into the table.
func (m *Model) refreshRows() {
	m.proj = m.vm.Projection()
	m.rows = m.proj.Rows
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = table.Row(markdown.Row(r))
	}
	m.table.SetColumns(columns(m.vm.Query().Sort))
	m.table.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	if c := m.table.Cursor(); c < 0 {
		m.table.SetCursor(0)
	} else if c >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) takeStatus() {
	if msg, ok := m.latest.Take(); ok {
		m.status = &msg
	}
}

func (m Model) selected() (model.Record, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return model.Record{}, false
	}
	return m.rows[c], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.loading = false
		if msg.err == nil {
			m.vm.ApplySnapshot(msg.token, msg.records)
		}
		m.refreshRows()
		m.takeStatus()
		return m, nil

	case mutationMsg:
		m.loading = false
		m.refreshRows()
		m.takeStatus()
		if m.submitting {
			m.submitting = false
			if msg.err != nil {
				return m.openForm(m.formTitle)
			}
			if m.editing == nil {
				m.values.Reset()
			} else {
				m.values, m.editing = nil, nil
			}
			return m, nil
		}
		if errors.Is(msg.err, viewmodel.ErrCancelled) {
			m.status = &notify.Message{Kind: notify.KindSuccess, Text: "Delete cancelled"}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 3))
	}

	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateTable(msg)
}

func (m Model) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, m.fetch()
	case "1", "2", "3", "4":
		f := view.Fields[int(key.String()[0]-'1')]
		m.vm.ToggleSort(f)
		m.refreshRows()
		return m, nil
	case "s":
		m.vm.SetProcessFilter(nextProcess(m.vm.Query().Filters.Process))
		m.refreshRows()
		return m, nil
	case "p":
		m.vm.SetPriorityFilter(nextPriority(m.vm.Query().Filters.Priority))
		m.refreshRows()
		return m, nil
	case "c":
		m.vm.SetQuery(view.Query{})
		m.search.SetValue("")
		m.refreshRows()
		return m, nil
	case "/":
		m.mode = modeSearch
		m.table.Blur()
		return m, m.search.Focus()
	case "n", "e", "enter", "d":
		if m.submitting {
			return m, nil
		}
	}

	switch key.String() {
	case "n":
		m.editing = nil
		m.values = &form.Values{}
		return m.openForm("New task")
	case "e", "enter":
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = &r
		m.values = form.FromRecord(r)
		return m.openForm(fmt.Sprintf("Edit task %s", id.Format(r.ID)))
	case "d":
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.deleteID = r.ID
		m.confirm = new(bool)
		m.form = form.NewConfirm("Confirm delete", fmt.Sprintf("Delete task %s %q?", id.Format(r.ID), r.Task), m.confirm)
		m.mode = modeConfirm
		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.mode = modeTable
			m.search.Blur()
			m.table.Focus()
			return m, nil
		case "esc":
			m.search.SetValue("")
			m.vm.SetSearch("")
			m.refreshRows()
			m.mode = modeTable
			m.search.Blur()
			m.table.Focus()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.vm.SetSearch(m.search.Value())
	m.refreshRows()
	return m, cmd
}

func (m Model) openForm(title string) (tea.Model, tea.Cmd) {
	m.formTitle = title
	m.form = form.New(title, m.values).WithShowHelp(true)
	m.mode = modeForm
	m.table.Blur()
	return m, m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeTable
	m.table.Focus()
}

func (m *Model) discardForm() {
	m.closeForm()
	m.values, m.editing = nil, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.discardForm()
		return m, nil
	}

	fm, cmd := m.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.discardForm()
		return m, nil
	case huh.StateCompleted:
		return m.submitForm()
	}
	return m, cmd
}

// submitForm sends the completed form. The form is hidden while the request
// runs and reopened with the same values if it fails.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	in, err := m.values.Input()
	if err != nil {
		m.status = &notify.Message{Kind: notify.KindError, Text: err.Error()}
		return m.openForm(m.formTitle)
	}
	m.closeForm()
	m.submitting = true
	m.loading = true
	return m, m.submit(m.editing, in)
}

func (m Model) submit(editing *model.Record, in model.RecordInput) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	if editing == nil {
		return func() tea.Msg {
			_, err := vm.Create(ctx, in)
			return mutationMsg{err: err}
		}
	}
	next := *editing
	next.Task, next.Process, next.Priority = in.Task, in.Process, in.Priority
	patch := model.Diff(*editing, next)
	recID := editing.ID
	return func() tea.Msg {
		_, err := vm.Update(ctx, recID, patch)
		if errors.Is(err, viewmodel.ErrNoChanges) {
			err = nil
		}
		return mutationMsg{err: err}
	}
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	fm, cmd := m.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateNormal {
		return m, cmd
	}

	approved := m.form.State == huh.StateCompleted && *m.confirm
	target := m.deleteID
	m.closeForm()
	m.loading = approved
	vm, ctx := m.vm, m.ctx
	return m, func() tea.Msg {
		err := vm.Delete(ctx, target, viewmodel.ConfirmFunc(func(string, string) (bool, error) {
			return approved, nil
		}))
		return mutationMsg{err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Task Manager"))
	sb.WriteString("\n")

	switch m.mode {
	case modeForm, modeConfirm:
		sb.WriteString(m.form.View())
		if m.status != nil && m.status.Kind == notify.KindError {
			sb.WriteString("\n" + m.status.Render())
		}
		sb.WriteString("\n" + mutedStyle.Render("esc cancel"))
		return sb.String()
	}

	if m.mode == modeSearch || m.search.Value() != "" {
		sb.WriteString(m.search.View() + "\n")
	}

	if len(m.rows) == 0 {
		if !m.vm.Loaded() {
			sb.WriteString("Loading...\n")
		} else {
			sb.WriteString(markdown.EmptyMessage(m.proj) + "\n")
		}
	} else {
		sb.WriteString(m.table.View() + "\n")
	}

	sb.WriteString(mutedStyle.Render(m.summary()) + "\n")
	if m.status != nil {
		sb.WriteString(m.status.Render() + "\n")
	}
	sb.WriteString(mutedStyle.Render(helpLine))
	return sb.String()
}

func (m Model) summary() string {
	q := m.vm.Query()
	parts := []string{fmt.Sprintf("%d of %d tasks", len(m.rows), m.proj.Total)}
	if q.Filters.Process != "" {
		parts = append(parts, "status="+string(q.Filters.Process))
	}
	if q.Filters.Priority != "" {
		parts = append(parts, "priority="+string(q.Filters.Priority))
	}
	if q.Sort.Active() {
		parts = append(parts, "sort="+q.Sort.String())
	}
	if m.loading {
		parts = append(parts, "syncing...")
	}
	return strings.Join(parts, " · ")
}

func nextProcess(p model.Process) model.Process {
	all := append([]model.Process{model.ProcessUnset}, model.Processes()...)
	for i, v := range all {
		if v == p {
			return all[(i+1)%len(all)]
		}
	}
	return model.ProcessUnset
}

func nextPriority(p model.Priority) model.Priority {
	all := append([]model.Priority{model.PriorityUnset}, model.Priorities()...)
	for i, v := range all {
		if v == p {
			return all[(i+1)%len(all)]
		}
	}
	return model.PriorityUnset
}

// Run starts the board on the terminal and blocks until the user quits.
func Run(ctx context.Context, vm *viewmodel.ListViewModel, latest *notify.Latest) error {
	_, err := tea.NewProgram(New(ctx, vm, latest), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
