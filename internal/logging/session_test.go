package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewSessionLog(t *testing.T) {
	t.Run("creates directory and file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs", "nested")

		s, err := NewSessionLog(dir)
		if err != nil {
			t.Fatalf("NewSessionLog: %v", err)
		}
		defer s.Close()

		if s.ID == "" {
			t.Error("expected ID to be set")
		}
		if s.Path != filepath.Join(dir, s.ID+".jsonl") {
			t.Errorf("Path: got %q", s.Path)
		}
		if _, err := os.Stat(s.Path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewSessionLog("")
		if err == nil || !strings.Contains(err.Error(), "empty") {
			t.Errorf("got %v, want empty dir error", err)
		}
	})

	t.Run("close is nil safe", func(t *testing.T) {
		var s *SessionLog
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
}

func TestSessionLogger(t *testing.T) {
	s, err := NewSessionLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionLog: %v", err)
	}

	logger := s.Logger(DefaultOptions())
	logger.Info("toggled task", "id", 7)
	logger.Debug("not written")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["msg"] != "toggled task" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["session"] != s.ID {
		t.Errorf("session: got %v, want %q", entry["session"], s.ID)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func writeSession(t *testing.T, dir, id, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, id+".jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindSessions(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeSession(t, dir, "old", "{}\n", now.Add(-2*time.Hour))
	newest := writeSession(t, dir, "new", "{}\n{}\n", now)
	writeSession(t, dir, "mid", "", now.Add(-time.Hour))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub.jsonl"), 0o755)

	sessions, err := FindSessions(dir)
	if err != nil {
		t.Fatalf("FindSessions: %v", err)
	}
	var ids []string
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	if strings.Join(ids, ",") != "new,mid,old" {
		t.Errorf("order: got %v", ids)
	}
	if sessions[0].Size != 6 {
		t.Errorf("size: got %d, want 6", sessions[0].Size)
	}

	latest, err := FindLatestLog(dir)
	if err != nil {
		t.Fatalf("FindLatestLog: %v", err)
	}
	if latest != newest {
		t.Errorf("latest: got %q, want %q", latest, newest)
	}
}

func TestFindLatestLogMissingDir(t *testing.T) {
	latest, err := FindLatestLog(filepath.Join(t.TempDir(), "absent"))
	if err != nil || latest != "" {
		t.Errorf("got %q, %v", latest, err)
	}
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	var content strings.Builder
	for i := 1; i <= 500; i++ {
		content.WriteString(strings.Repeat("x", i%40))
		content.WriteString("\n")
	}
	path := writeSession(t, dir, "s", content.String(), time.Now())
	allLines := strings.SplitAfter(content.String(), "\n")
	allLines = allLines[:len(allLines)-1]

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"all lines", 0, content.String()},
		{"last three", 3, strings.Join(allLines[497:], "")},
		{"more than file", 1000, content.String()},
		{"last one", 1, allLines[499]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %d bytes, want %d", buf.Len(), len(tt.want))
			}
		})
	}
}

func TestTailLogNoTrailingNewline(t *testing.T) {
	path := writeSession(t, t.TempDir(), "s", "a\nb\nc", time.Now())
	var buf bytes.Buffer
	if err := TailLog(context.Background(), &buf, path, 2, false); err != nil {
		t.Fatalf("TailLog: %v", err)
	}
	if buf.String() != "b\nc" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTailLogMissingFile(t *testing.T) {
	err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.jsonl"), 10, false)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

type syncBuffer struct {
	ch chan string
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.ch <- string(p)
	return len(p), nil
}

func TestTailLogFollow(t *testing.T) {
	path := writeSession(t, t.TempDir(), "s", "first\n", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{ch: make(chan string, 16)}
	done := make(chan error, 1)
	go func() { done <- TailLog(ctx, out, path, 0, true) }()

	if got := <-out.ch; got != "first\n" {
		t.Fatalf("initial: got %q", got)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("second\n")
	f.Close()

	select {
	case got := <-out.ch:
		if got != "second\n" {
			t.Errorf("followed: got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended data")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("TailLog: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("TailLog did not stop after cancel")
	}
}
