package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskflow/internal/storage"
	"github.com/nibzard/taskflow/internal/todo"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func press(m *model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func newTestModel(t *testing.T, texts ...string) (*model, *todo.Store) {
	t.Helper()
	store := todo.Open(storage.NewMemory())
	for _, text := range texts {
		if _, _, err := store.Add(text); err != nil {
			t.Fatalf("Add(%q) error = %v", text, err)
		}
	}
	m := newModel(store, Options{NarrowWidth: 80})
	t.Cleanup(m.close)
	return m, store
}

func visibleTexts(m *model) []string {
	out := make([]string, 0, len(m.visible))
	for _, task := range m.visible {
		out = append(out, task.Text)
	}
	return out
}

func TestAddThroughInput(t *testing.T) {
	m, store := newTestModel(t)

	press(m, runes("a"))
	if !m.adding {
		t.Fatal("expected input to be focused after 'a'")
	}

	press(m, runes("Buy milk"), key(tea.KeyEnter))
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared after add: %q", m.input.Value())
	}
	if !m.adding {
		t.Error("input should stay focused for the next task")
	}
	if m.stats.Total != 1 || m.stats.Active != 1 {
		t.Errorf("stats = %+v, want total 1 active 1", m.stats)
	}
	if !strings.Contains(m.status, "Buy milk") {
		t.Errorf("status = %q, want it to mention the task", m.status)
	}

	press(m, key(tea.KeyEsc))
	if m.adding {
		t.Error("expected esc to leave input mode")
	}
}

func TestAddBlankIsNoop(t *testing.T) {
	m, store := newTestModel(t)

	press(m, runes("a"), runes("   "), key(tea.KeyEnter))
	if store.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", store.Len())
	}
	if m.input.Value() != "   " {
		t.Errorf("blank input should be left as typed, got %q", m.input.Value())
	}
}

func TestQuitKeysInListMode(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestTypingQDoesNotQuitWhileAdding(t *testing.T) {
	m, store := newTestModel(t)

	press(m, runes("a"), runes("q"))
	if !m.adding || m.input.Value() != "q" {
		t.Fatalf("adding=%v input=%q, want q typed into the input", m.adding, m.input.Value())
	}
	press(m, key(tea.KeyEnter))
	if store.Len() != 1 || store.Tasks()[0].Text != "q" {
		t.Errorf("tasks = %+v, want one task \"q\"", store.Tasks())
	}
}

func TestToggleAndDeleteSelected(t *testing.T) {
	m, store := newTestModel(t, "one", "two", "three")

	press(m, runes("j"), key(tea.KeySpace))
	tasks := store.Tasks()
	if tasks[0].Completed || !tasks[1].Completed || tasks[2].Completed {
		t.Fatalf("after toggle = %+v, want only \"two\" completed", tasks)
	}
	if m.stats.CompletionRate != 33 {
		t.Errorf("CompletionRate = %d, want 33", m.stats.CompletionRate)
	}

	press(m, runes("d"))
	if got := visibleTexts(m); strings.Join(got, ",") != "one,three" {
		t.Errorf("visible after delete = %v, want [one three]", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestCursorClamps(t *testing.T) {
	m, _ := newTestModel(t, "one", "two")

	press(m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after k at top, want 0", m.cursor)
	}
	press(m, runes("j"), runes("j"), runes("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j past end, want 1", m.cursor)
	}
	press(m, runes("g"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after g, want 0", m.cursor)
	}
	press(m, runes("G"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after G, want 1", m.cursor)
	}
}

func TestFilterKeys(t *testing.T) {
	m, store := newTestModel(t, "one", "two", "three")
	if _, err := store.Toggle(store.Tasks()[1].ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	tests := []struct {
		key    tea.KeyMsg
		filter todo.FilterMode
		want   string
	}{
		{runes("2"), todo.FilterActive, "one,three"},
		{runes("3"), todo.FilterCompleted, "two"},
		{runes("1"), todo.FilterAll, "one,two,three"},
		{key(tea.KeyTab), todo.FilterActive, "one,three"},
		{key(tea.KeyTab), todo.FilterCompleted, "two"},
		{key(tea.KeyTab), todo.FilterAll, "one,two,three"},
	}
	for _, tt := range tests {
		press(m, tt.key)
		if m.filter != tt.filter {
			t.Errorf("after %q filter = %q, want %q", tt.key.String(), m.filter, tt.filter)
		}
		if got := strings.Join(visibleTexts(m), ","); got != tt.want {
			t.Errorf("after %q visible = %q, want %q", tt.key.String(), got, tt.want)
		}
	}
}

func TestToggleUnderActiveFilterHidesTask(t *testing.T) {
	m, store := newTestModel(t, "one", "two")

	press(m, runes("2"), runes("j"), key(tea.KeySpace))
	if got := visibleTexts(m); len(got) != 1 || got[0] != "one" {
		t.Errorf("visible = %v, want [one]", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	if !store.Tasks()[1].Completed {
		t.Error("expected \"two\" to be completed")
	}
}

func TestResizeDoesNotTouchTasks(t *testing.T) {
	m, store := newTestModel(t, "one", "two")
	before := store.Tasks()

	press(m, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !m.narrow {
		t.Error("expected narrow layout at width 60")
	}
	if m.input.Placeholder != narrowPlaceholder {
		t.Errorf("placeholder = %q, want %q", m.input.Placeholder, narrowPlaceholder)
	}

	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.narrow {
		t.Error("expected wide layout at width 120")
	}
	if m.input.Placeholder != widePlaceholder {
		t.Errorf("placeholder = %q, want %q", m.input.Placeholder, widePlaceholder)
	}

	after := store.Tasks()
	if len(after) != len(before) {
		t.Fatalf("resize changed tasks: %+v -> %+v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("task %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestNarrowWidthBoundary(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !m.narrow {
		t.Error("width equal to the threshold should use the narrow layout")
	}
	press(m, tea.WindowSizeMsg{Width: 81, Height: 24})
	if m.narrow {
		t.Error("width above the threshold should use the wide layout")
	}
}

func TestThemeToggle(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, runes("t"))
	if !m.dark || m.styles.palette.Name != "dark" {
		t.Errorf("after t: dark=%v palette=%q", m.dark, m.styles.palette.Name)
	}
	press(m, runes("t"))
	if m.dark || m.styles.palette.Name != "light" {
		t.Errorf("after second t: dark=%v palette=%q", m.dark, m.styles.palette.Name)
	}
}

func TestEmptyState(t *testing.T) {
	tests := []struct {
		name  string
		total int
		mode  todo.FilterMode
		want  string
	}{
		{"no tasks", 0, todo.FilterAll, "Ready to conquer your day?"},
		{"no tasks active", 0, todo.FilterActive, "Ready to conquer your day?"},
		{"active", 2, todo.FilterActive, "No active tasks!"},
		{"completed", 2, todo.FilterCompleted, "No completed tasks yet!"},
		{"other", 2, todo.FilterAll, "No tasks found!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := emptyState(tt.total, tt.mode)
			if got != tt.want {
				t.Errorf("emptyState(%d, %q) = %q, want %q", tt.total, tt.mode, got, tt.want)
			}
		})
	}
}

func TestViewRendersTasksAndStats(t *testing.T) {
	m, store := newTestModel(t, "Buy milk", "Write report")
	if _, err := store.Toggle(store.Tasks()[0].ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	for _, want := range []string{appTitle, "Buy milk", "Write report", "[✓]", "50%", "Total Tasks", "All Tasks"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	press(m, runes("3"))
	view = m.View()
	if strings.Contains(view, "Write report") {
		t.Error("completed view should not show active tasks")
	}
}

func TestViewShowsNonDefaultKey(t *testing.T) {
	store := todo.Open(storage.NewMemory(), todo.WithKey("work"))
	m := newModel(store, Options{})
	t.Cleanup(m.close)

	if view := m.View(); !strings.Contains(view, "work") {
		t.Errorf("view should name the task list:\n%s", view)
	}
}

func TestViewEmptyStore(t *testing.T) {
	m, _ := newTestModel(t)
	if view := m.View(); !strings.Contains(view, "Ready to conquer your day?") {
		t.Errorf("view = %q, want empty-state headline", view)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("expected help screen")
	}
	press(m, key(tea.KeyEsc))
	if m.showHelp {
		t.Error("expected esc to close help")
	}
}

type failingStorage struct{ storage.Memory }

func (f *failingStorage) Put(string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureShowsError(t *testing.T) {
	store := todo.Open(&failingStorage{})
	m := newModel(store, Options{})
	t.Cleanup(m.close)

	press(m, runes("a"), runes("Buy milk"), key(tea.KeyEnter))
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q (err=%v), want write error", m.status, m.statusErr)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want the task kept in memory", store.Len())
	}
}

func TestRecoveredStoreShowsError(t *testing.T) {
	kv := storage.NewMemory()
	if err := kv.Put(todo.DefaultKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	store := todo.Open(kv)
	m := newModel(store, Options{})
	t.Cleanup(m.close)

	if !m.statusErr {
		t.Errorf("status = %q, want an error about discarded tasks", m.status)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestCopySelected(t *testing.T) {
	m, _ := newTestModel(t, "one", "two")

	var copied string
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = clipboard.WriteAll })

	press(m, runes("j"))
	_, cmd := m.Update(runes("y"))
	if cmd == nil {
		t.Fatal("expected a copy command")
	}
	press(m, cmd())
	if copied != "two" {
		t.Errorf("copied %q, want \"two\"", copied)
	}
	if m.statusErr || !strings.Contains(m.status, "Copied") {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	_, cmd = m.Update(runes("y"))
	press(m, cmd())
	if !m.statusErr || !strings.Contains(m.status, "no clipboard") {
		t.Errorf("status = %q (err=%v), want copy failure", m.status, m.statusErr)
	}
}

func TestCopyOnEmptyList(t *testing.T) {
	m, _ := newTestModel(t)
	if _, cmd := m.Update(runes("y")); cmd != nil {
		t.Error("expected no command when nothing is selected")
	}
}

func TestListWindow(t *testing.T) {
	tests := []struct {
		n, cursor, height int
		start, end        int
	}{
		{5, 0, 0, 0, 5},
		{5, 4, 10, 0, 5},
		{10, 0, 3, 0, 3},
		{10, 2, 3, 0, 3},
		{10, 3, 3, 1, 4},
		{10, 9, 3, 7, 10},
	}
	for _, tt := range tests {
		start, end := listWindow(tt.n, tt.cursor, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("listWindow(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tt.n, tt.cursor, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestLongTextTruncatedInBothLayouts(t *testing.T) {
	long := strings.Repeat("word ", 40)
	m, _ := newTestModel(t, long)

	for _, width := range []int{60, 120} {
		press(m, tea.WindowSizeMsg{Width: width, Height: 40})
		view := m.View()
		if strings.Contains(view, strings.TrimSpace(long)) {
			t.Errorf("width %d: long text not truncated", width)
		}
		if !strings.Contains(view, "…") {
			t.Errorf("width %d: missing ellipsis", width)
		}
	}
}

func TestAddReportsExhaustedIDs(t *testing.T) {
	kv := storage.NewMemory()
	blob := fmt.Sprintf(`[{"id":%d,"text":"last","completed":false}]`, todo.MaxID)
	if err := kv.Put(todo.DefaultKey, []byte(blob)); err != nil {
		t.Fatal(err)
	}
	store := todo.Open(kv)
	m := newModel(store, Options{})
	t.Cleanup(m.close)

	press(m, runes("a"), runes("one more"), key(tea.KeyEnter))
	if !m.statusErr || !strings.Contains(m.status, "out of range") {
		t.Errorf("status = %q (err=%v), want id range error", m.status, m.statusErr)
	}
	if m.input.Value() != "one more" {
		t.Errorf("input should keep the text, got %q", m.input.Value())
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestRunTUIRequiresTTY(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	store := todo.Open(storage.NewMemory())
	if err := RunTUI(context.Background(), store, Options{}); !errors.Is(err, ErrNoTTY) {
		t.Errorf("RunTUI() error = %v, want ErrNoTTY", err)
	}
}

func TestPalettes(t *testing.T) {
	if PaletteFor(false).Name != "light" || PaletteFor(true).Name != "dark" {
		t.Fatalf("PaletteFor: got %q and %q", PaletteFor(false).Name, PaletteFor(true).Name)
	}
	if LightPalette.Text == DarkPalette.Text || LightPalette.Card == DarkPalette.Card {
		t.Error("light and dark palettes should differ in text and card colors")
	}
	if newStyles(DarkPalette).palette.Name != "dark" {
		t.Error("styles should keep their palette")
	}
}

func TestIsTTYNonFile(t *testing.T) {
	var b strings.Builder
	if IsTTY(&b) {
		t.Error("IsTTY(strings.Builder) = true, want false")
	}
}
