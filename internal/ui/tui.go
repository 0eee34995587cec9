// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/taskflow/internal/todo"
)

const (
	appTitle    = "TaskFlow Pro"
	appSubtitle = "Organize your life with style"

	widePlaceholder   = "What amazing thing will you accomplish today?"
	narrowPlaceholder = "Add a new task..."

	inputCharLimit = 500
	minInputWidth  = 10
)

// ErrNoTTY is returned by RunTUI when stdout is not a terminal.
var ErrNoTTY = errors.New("tui requires a TTY")

// Options configures the TUI.
type Options struct {
	Filter      todo.FilterMode // initial filter
	Dark        bool            // start with the dark theme
	NarrowWidth int             // widths at or below this use the compact layout; 0 disables it
	Logger      *log.Logger
}

// RunTUI runs the interactive task list on the terminal until the user
// quits or ctx is done.
func RunTUI(ctx context.Context, store *todo.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return ErrNoTTY
	}

	m := newModel(store, opts)
	defer m.close()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// statusMsg reports the result of an asynchronous command.
type statusMsg struct {
	text string
	err  bool
}

type model struct {
	store  *todo.Store
	logger *log.Logger
	cancel func()

	filter  todo.FilterMode
	visible []todo.Task
	stats   todo.Stats
	cursor  int

	input  textinput.Model
	adding bool

	dark   bool
	styles styles

	narrowWidth int
	width       int
	height      int
	narrow      bool

	showHelp  bool
	status    string
	statusErr bool
}

func newModel(store *todo.Store, opts Options) *model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	filter := opts.Filter
	if filter == "" {
		filter = todo.FilterAll
	}

	ti := textinput.New()
	ti.Placeholder = widePlaceholder
	ti.CharLimit = inputCharLimit
	ti.Width = 48
	ti.Prompt = "+ "

	m := &model{
		store:       store,
		logger:      logger,
		filter:      filter,
		input:       ti,
		dark:        opts.Dark,
		styles:      newStyles(PaletteFor(opts.Dark)),
		narrowWidth: opts.NarrowWidth,
		status:      "Press a to add a task, ? for help.",
	}
	m.refresh()
	m.cancel = store.Subscribe(m.onChange)

	if err := store.Recovered(); err != nil {
		m.setError(fmt.Sprintf("Saved tasks were unreadable and have been reset: %v", err))
	}
	return m
}

// close releases the store subscription.
func (m *model) close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case statusMsg:
		m.status = msg.text
		m.statusErr = msg.err
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.stopAdding()
		m.setStatus("Cancelled.")
		return m, nil
	case "enter":
		// Applied adds, including write failures, are reported through onChange.
		_, created, err := m.store.Add(m.input.Value())
		switch {
		case created:
			m.input.Reset()
		case err != nil:
			m.setError(fmt.Sprintf("Not added: %v", err))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a", "i", "n":
		return m, m.startAdding()
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.visible)-1, 0)
	case " ", "enter", "x":
		if task, ok := m.selected(); ok {
			m.store.Toggle(task.ID)
		}
	case "d", "delete":
		if task, ok := m.selected(); ok {
			m.store.Delete(task.ID)
		}
	case "y":
		return m, m.copySelected()
	case "1":
		m.setFilter(todo.FilterAll)
	case "2":
		m.setFilter(todo.FilterActive)
	case "3":
		m.setFilter(todo.FilterCompleted)
	case "tab":
		m.setFilter(m.filter.Next())
	case "t":
		m.toggleTheme()
	case "?", "h":
		m.showHelp = !m.showHelp
	case "esc":
		m.showHelp = false
	}
	return m, nil
}

// copySelected copies the text of the task under the cursor.
func (m *model) copySelected() tea.Cmd {
	task, ok := m.selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := writeClipboard(task.Text); err != nil {
			return statusMsg{text: "Failed to copy: " + err.Error(), err: true}
		}
		return statusMsg{text: fmt.Sprintf("Copied %q.", task.Text)}
	}
}

// onChange is subscribed to the store and runs after every mutation.
func (m *model) onChange(c todo.Change) {
	m.refresh()
	if c.Err != nil {
		m.setError(fmt.Sprintf("Not saved: %v", c.Err))
		return
	}
	switch c.Op {
	case todo.OpAdd:
		m.selectTask(c.Task.ID)
		m.setStatus(fmt.Sprintf("Added %q.", c.Task.Text))
	case todo.OpToggle:
		if c.Task.Completed {
			m.setStatus(fmt.Sprintf("Completed %q.", c.Task.Text))
		} else {
			m.setStatus(fmt.Sprintf("Reopened %q.", c.Task.Text))
		}
	case todo.OpDelete:
		m.setStatus(fmt.Sprintf("Deleted %q.", c.Task.Text))
	}
}

func (m *model) refresh() {
	m.visible = slices.Collect(m.store.View(m.filter))
	m.stats = m.store.Stats()
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *model) startAdding() tea.Cmd {
	m.adding = true
	m.showHelp = false
	m.setStatus("Type a task and press Enter. Esc to finish.")
	return m.input.Focus()
}

func (m *model) stopAdding() {
	m.adding = false
	m.input.Reset()
	m.input.Blur()
}

func (m *model) setFilter(mode todo.FilterMode) {
	if mode == m.filter {
		return
	}
	m.filter = mode
	m.cursor = 0
	m.refresh()
	m.logger.Debug("filter changed", "filter", mode)
}

func (m *model) toggleTheme() {
	m.dark = !m.dark
	m.styles = newStyles(PaletteFor(m.dark))
	m.logger.Debug("theme changed", "theme", m.styles.palette.Name)
}

// resize records the terminal size and derives the layout. It never
// touches the task collection.
func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.narrow = m.narrowWidth > 0 && width <= m.narrowWidth

	if m.narrow {
		m.input.Placeholder = narrowPlaceholder
	} else {
		m.input.Placeholder = widePlaceholder
	}
	m.input.Width = max(width-12, minInputWidth)
}

func (m *model) move(delta int) {
	m.cursor = clampCursor(m.cursor+delta, len(m.visible))
}

func (m *model) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return todo.Task{}, false
	}
	return m.visible[m.cursor], true
}

func (m *model) selectTask(id todo.ID) {
	if i := slices.IndexFunc(m.visible, func(t todo.Task) bool { return t.ID == id }); i >= 0 {
		m.cursor = i
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func (m *model) View() string {
	var sections []string
	sections = append(sections, m.viewHeader())

	if m.showHelp {
		sections = append(sections, m.viewHelp(), m.viewFooter())
		return m.frame(sections)
	}

	sections = append(sections,
		m.viewInput(),
		m.viewStats(),
		m.viewTabs(),
		m.viewList(),
		m.viewStatus(),
		m.viewFooter(),
	)
	return m.frame(sections)
}

func (m *model) frame(sections []string) string {
	pad := lipgloss.NewStyle().Padding(1, 2)
	if m.narrow {
		pad = lipgloss.NewStyle().Padding(0, 1)
	}
	return pad.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *model) viewHeader() string {
	s := m.styles
	title := s.title.Render(appTitle)
	if key := m.store.Key(); key != todo.DefaultKey {
		title += " " + s.subtitle.Render(key)
	}
	title += "  " + s.help.Render("["+s.palette.Name+"]")
	if m.narrow {
		return title
	}
	return title + "\n" + s.subtitle.Render(appSubtitle) + "\n"
}

func (m *model) viewInput() string {
	if m.narrow {
		return m.input.View()
	}
	return m.styles.input.Render(m.input.View())
}

type statCard struct {
	label string
	value string
	color lipgloss.Color
}

func (m *model) statCards() []statCard {
	return []statCard{
		{"Total Tasks", fmt.Sprint(m.stats.Total), m.styles.palette.Primary},
		{"Active", fmt.Sprint(m.stats.Active), colorActive},
		{"Completed", fmt.Sprint(m.stats.Completed), colorCompleted},
		{"Progress", fmt.Sprintf("%d%%", m.stats.CompletionRate), colorProgress},
	}
}

func (m *model) viewStats() string {
	s := m.styles
	cards := m.statCards()

	if m.narrow {
		parts := make([]string, 0, len(cards))
		for _, c := range cards {
			parts = append(parts, s.cardLabel.Render(c.label+":")+" "+s.cardValue.Foreground(c.color).Render(c.value))
		}
		return strings.Join(parts, "  ")
	}

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := s.cardValue.Foreground(c.color).Render(c.value) + "\n" + s.cardLabel.Render(c.label)
		rendered = append(rendered, s.card.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

var filterLabels = map[todo.FilterMode]string{
	todo.FilterAll:       "All Tasks",
	todo.FilterActive:    "Active",
	todo.FilterCompleted: "Done",
}

func (m *model) viewTabs() string {
	tabs := make([]string, 0, len(todo.FilterModes))
	for i, mode := range todo.FilterModes {
		label := fmt.Sprintf("%d %s", i+1, filterLabels[mode])
		if mode == m.filter {
			tabs = append(tabs, m.styles.tabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.tab.Render(label))
		}
	}
	return "\n" + strings.Join(tabs, " ") + "\n"
}

// emptyState returns the headline and hint shown when the view is empty.
func emptyState(total int, mode todo.FilterMode) (string, string) {
	switch {
	case total == 0:
		return "Ready to conquer your day?", "Add your first task above to get started!"
	case mode == todo.FilterActive:
		return "No active tasks!", "All tasks are completed!"
	case mode == todo.FilterCompleted:
		return "No completed tasks yet!", "Complete some tasks to see them here!"
	default:
		return "No tasks found!", "Try a different filter!"
	}
}

func (m *model) viewList() string {
	s := m.styles
	if len(m.visible) == 0 {
		title, hint := emptyState(m.stats.Total, m.filter)
		return s.empty.Render(title) + "\n" + s.emptyHint.Render(hint) + "\n"
	}

	start, end := listWindow(len(m.visible), m.cursor, m.listHeight())
	textWidth := 0
	if m.width > 0 {
		textWidth = max(m.width-10, minInputWidth)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		task := m.visible[i]

		marker := "  "
		if i == m.cursor && !m.adding {
			marker = s.cursor.Render("> ")
		}
		check := s.checkOff.Render("[ ]")
		text := task.Text
		if textWidth > 0 {
			text = ansi.Truncate(text, textWidth, "…")
		}
		if task.Completed {
			check = s.checkOn.Render("[✓]")
			text = s.taskDone.Render(text)
		} else {
			text = s.task.Render(text)
		}

		b.WriteString(marker + check + " " + text + "\n")
	}
	if start > 0 || end < len(m.visible) {
		b.WriteString(s.help.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(m.visible))) + "\n")
	}
	return b.String()
}

// listHeight returns how many task rows fit, or 0 if the height is unknown.
func (m *model) listHeight() int {
	if m.height == 0 {
		return 0
	}
	chrome := 18
	if m.narrow {
		chrome = 8
	}
	return max(m.height-chrome, 3)
}

// listWindow returns the [start, end) range of rows to draw so that the
// cursor stays visible. height 0 draws every row.
func listWindow(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	return start, start + height
}

func (m *model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.errorText.Render(m.status)
	}
	return m.styles.status.Render(m.status)
}

func (m *model) viewFooter() string {
	if m.adding {
		return m.styles.help.Render("enter add • esc done")
	}
	if m.narrow {
		return m.styles.help.Render("? help • q quit")
	}
	return m.styles.help.Render("a add • space toggle • d delete • tab filter • t theme • ? help • q quit")
}

func (m *model) viewHelp() string {
	var b strings.Builder
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  a, i, n        Add tasks (enter adds, esc finishes)\n")
	b.WriteString("  j, k, ↑, ↓     Move\n")
	b.WriteString("  g, G           First / last task\n")
	b.WriteString("  space, enter   Toggle completed\n")
	b.WriteString("  d, delete      Delete task\n")
	b.WriteString("  y              Copy task text\n")
	b.WriteString("  1, 2, 3        Show all, active, done\n")
	b.WriteString("  tab            Next filter\n")
	b.WriteString("  t              Toggle light/dark theme\n")
	b.WriteString("  h, ?           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n")
	return b.String()
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
