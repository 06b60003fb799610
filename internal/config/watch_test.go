package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func rewrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatch_ReloadsOnValidRewrite(t *testing.T) {
	path := writeProfile(t, `
soil:
  thresholds:
    moisture:
      min: 20
      max: 80
      optimal: 50
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan *Profile, 4)
	go func() {
		if err := Watch(ctx, path, func(p *Profile) { ch <- p }); err != nil {
			t.Errorf("Watch() = %v", err)
		}
	}()
	// Give the watcher a moment to register the file.
	time.Sleep(100 * time.Millisecond)

	// An inverted threshold must be rejected: no callback, previous
	// profile stays active.
	rewrite(t, path, `
soil:
  thresholds:
    moisture:
      min: 90
      max: 10
      optimal: 50
`)
	time.Sleep(100 * time.Millisecond)

	rewrite(t, path, `
soil:
  thresholds:
    moisture:
      min: 25
      max: 80
      optimal: 50
`)

	select {
	case p := <-ch:
		// The first delivered profile must be the valid rewrite, not the
		// rejected one.
		if got := p.Soil.Thresholds["moisture"].Min; got != 25 {
			t.Errorf("reloaded moisture min = %v, want 25", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a valid rewrite")
	}
}

func TestWatch_MissingFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := Watch(ctx, "/nonexistent/profile.yaml", func(*Profile) {}); err == nil {
		t.Error("Watch(missing file) = nil, want error")
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	path := writeProfile(t, "soil:\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(*Profile) {}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() after cancel = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after ctx cancel")
	}
}
