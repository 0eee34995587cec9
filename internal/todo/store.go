package todo

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultKey is the storage key the collection is kept under.
const DefaultKey = "todos"

// ErrPersist marks a failed write of the collection. The in-memory state
// is kept when it occurs.
var ErrPersist = errors.New("persist tasks")

// ErrIDRange is returned by Add when the id generator yields an id outside
// 1..MaxID. Nothing is added.
var ErrIDRange = errors.New("task id out of range")

// Storage is the durable key-value port the store writes through.
type Storage interface {
	// Get returns the blob stored under key. ok is false if the key is absent.
	Get(key string) (data []byte, ok bool, err error)
	// Put replaces the blob stored under key.
	Put(key string, data []byte) error
}

// Op names a mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpToggle Op = "toggle"
	OpDelete Op = "delete"
)

// Change describes a mutation that was applied to the store.
type Change struct {
	Op   Op
	Task Task  // the task after the change; for OpDelete, the removed task
	Err  error // non-nil if the write after the change failed
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Empty keys are ignored.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDGenerator sets the id source. The default is a Counter.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the logger for load and write diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type listener struct {
	id int
	fn func(Change)
}

// Store owns the ordered task collection.
type Store struct {
	storage Storage
	key     string
	ids     IDGenerator
	logger  *log.Logger

	tasks     []Task
	recovered error

	listeners    []listener
	nextListener int
}

// Open creates a store backed by storage and loads the collection stored
// under the key. It never fails on bad stored data: the store starts empty
// and Recovered reports what was discarded. storage must not be nil.
func Open(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		ids:     NewCounter(0),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	tasks, err := s.load()
	if err != nil {
		s.recovered = err
		s.logger.Warn("discarding stored tasks", "key", s.key, "err", err)
		return
	}
	for _, t := range tasks {
		s.ids.Observe(t.ID)
	}
	s.tasks = tasks
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(tasks))
}

func (s *Store) load() ([]Task, error) {
	data, ok, err := s.storage.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.key, err)
	}
	if !ok {
		return nil, nil
	}
	return UnmarshalTasks(data)
}

// Recovered returns the error that caused stored data to be discarded at
// Open, or nil if the data loaded cleanly.
func (s *Store) Recovered() error {
	return s.recovered
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Tasks returns a copy of the current collection in insertion order.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id ID) (Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Add appends a task with the trimmed text. Blank text is ignored:
// created is false and nothing is written. If no valid id is left, created
// is false and err wraps ErrIDRange. A non-nil error with created set
// means the task was added but could not be persisted.
func (s *Store) Add(text string) (task Task, created bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false, nil
	}

	id := s.ids.Next()
	for s.index(id) >= 0 {
		id = s.ids.Next()
	}
	if id < 1 || id > MaxID {
		s.logger.Error("add task", "key", s.key, "id", int64(id), "err", ErrIDRange)
		return Task{}, false, fmt.Errorf("%w: %d", ErrIDRange, id)
	}
	task = Task{ID: id, Text: text}

	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, task)

	return task, true, s.commit(OpAdd, task)
}

// Toggle flips the completed flag of the task with the given id.
// found is false for unknown ids, in which case nothing changes.
func (s *Store) Toggle(id ID) (found bool, err error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Clone(s.tasks)
	next[i].Completed = !next[i].Completed
	s.tasks = next

	return true, s.commit(OpToggle, next[i])
}

// Delete removes the task with the given id, keeping the order of the rest.
// removed is false for unknown ids.
func (s *Store) Delete(id ID) (removed bool, err error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}

	task := s.tasks[i]
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next

	return true, s.commit(OpDelete, task)
}

func (s *Store) index(id ID) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// commit writes the whole collection and notifies subscribers.
func (s *Store) commit(op Op, task Task) error {
	err := s.persist()
	if err != nil {
		s.logger.Error("write tasks", "op", op, "id", task.ID, "key", s.key, "err", err)
	}
	s.notify(Change{Op: op, Task: task, Err: err})
	return err
}

func (s *Store) persist() error {
	data, err := MarshalTasks(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.storage.Put(s.key, data); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrPersist, s.key, err)
	}
	return nil
}

// Subscribe registers fn to be called after every applied mutation.
// The returned func removes the subscription; calling it more than once
// is harmless.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
		})
	}
}

func (s *Store) notify(c Change) {
	for _, l := range slices.Clone(s.listeners) {
		l.fn(c)
	}
}
