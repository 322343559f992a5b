package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatchFiles_CoalescesWrites(t *testing.T) {
	WatchDebounce = 20 * time.Millisecond
	dir := t.TempDir()
	path := writeFile(t, dir, "pagenav.yaml", "name: a\n")
	other := writeFile(t, dir, "notes.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- WatchFiles(ctx, []string{path}, func() { calls <- struct{}{} })
	}()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(other, []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b", "c", "d"} {
		if err := os.WriteFile(path, []byte("name: "+name+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
	select {
	case <-calls:
		t.Error("writes were not coalesced")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchFiles() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WatchFiles did not return after cancel")
	}
}

func TestWatch_ReportsReloadsAndErrors(t *testing.T) {
	WatchDebounce = 20 * time.Millisecond
	dir := t.TempDir()
	path := writeFile(t, dir, "pagenav.yaml", "name: a\ndeck:\n  pages:\n    - path: /\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		cfg *Config
		err error
	}
	results := make(chan result, 10)
	go func() {
		_ = Watch(ctx, path, func(c *Config, err error) { results <- result{c, err} })
	}()
	time.Sleep(50 * time.Millisecond)

	next := func() result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(2 * time.Second):
			t.Fatal("no reload")
		}
		return result{}
	}

	if err := os.WriteFile(path, []byte("name: b\ndeck:\n  pages:\n    - path: /\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if r := next(); r.err != nil || r.cfg.Name != "b" {
		t.Fatalf("reload = %+v", r)
	}

	if err := os.WriteFile(path, []byte("name: c\ndeck:\n  pages: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if r := next(); r.err == nil || r.cfg != nil {
		t.Fatalf("invalid reload = %+v, want error", r)
	}
}

func TestWatchFiles_MissingDirectory(t *testing.T) {
	err := WatchFiles(context.Background(), []string{"/does/not/exist/pagenav.yaml"}, func() {})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
