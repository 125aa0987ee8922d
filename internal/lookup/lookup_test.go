package lookup

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "youtube.com.txt", "  ytd-masthead\n\ntop-bar  \n")
	writeFile(t, dir, "blank.org.txt", "\n  \n")

	s := NewStore(dir, nil)
	tests := []struct {
		domain string
		want   []string
	}{
		{"youtube.com", []string{"ytd-masthead", "top-bar"}},
		{"blank.org", nil},
		{"missing.net", nil},
		{"", nil},
		{"../etc/passwd", nil},
		{"a/b", nil},
		{`a\b`, nil},
		{"..", nil},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			got, err := s.Lookup(tt.domain)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.domain, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Lookup(%q) = %q, want %q", tt.domain, got, tt.want)
			}
		})
	}
}

func TestLookupCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.com.txt", "one")
	s := NewStore(dir, nil)

	if got, _ := s.Lookup("a.com"); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("first lookup = %q", got)
	}
	writeFile(t, dir, "a.com.txt", "two")
	if got, _ := s.Lookup("a.com"); !reflect.DeepEqual(got, []string{"one"}) {
		t.Fatalf("expected cached value, got %q", got)
	}

	s.Invalidate()
	if got, _ := s.Lookup("a.com"); !reflect.DeepEqual(got, []string{"two"}) {
		t.Fatalf("after invalidate = %q", got)
	}
}

func TestSetDirDropsCache(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "a.com.txt", "first")
	writeFile(t, second, "a.com.txt", "second")

	s := NewStore(first, nil)
	s.Lookup("a.com")
	s.SetDir(second)
	if got, _ := s.Lookup("a.com"); !reflect.DeepEqual(got, []string{"second"}) {
		t.Fatalf("lookup after SetDir = %q", got)
	}
}

func TestWatchInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.com.txt", "old")
	s := NewStore(dir, nil)
	s.Lookup("a.com")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeFile(t, dir, "a.com.txt", "new")
		if got, _ := s.Lookup("a.com"); reflect.DeepEqual(got, []string{"new"}) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("cache was not invalidated by file change")
}

// startWatch runs Watch in the background until the test ends.
func startWatch(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})
}

// eventually rewrites the record until a lookup returns want.
func eventually(t *testing.T, s *Store, dir, domain, content string, want []string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeFile(t, dir, domain+".txt", content)
		if got, _ := s.Lookup(domain); reflect.DeepEqual(got, want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	got, _ := s.Lookup(domain)
	t.Fatalf("Lookup(%q) = %q, want %q", domain, got, want)
}

func TestLookupDoesNotCacheMisses(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)

	if got, _ := s.Lookup("late.com"); got != nil {
		t.Fatalf("expected miss, got %q", got)
	}
	writeFile(t, dir, "late.com.txt", "header")
	if got, _ := s.Lookup("late.com"); !reflect.DeepEqual(got, []string{"header"}) {
		t.Fatalf("lookup after create = %q", got)
	}
}

func TestWatchMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "movable")
	s := NewStore(dir, nil)
	startWatch(t, s)

	if got, _ := s.Lookup("example.com"); got != nil {
		t.Fatalf("expected miss, got %q", got)
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, dir, "example.com.txt", "site-header")
	if got, _ := s.Lookup("example.com"); !reflect.DeepEqual(got, []string{"site-header"}) {
		t.Fatalf("lookup after create = %q", got)
	}

	// The hit is cached; edits are only seen once the watch follows the
	// new directory.
	eventually(t, s, dir, "example.com", "nav-bar", []string{"nav-bar"})
}

func TestWatchFollowsSetDir(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	s := NewStore(first, nil)
	startWatch(t, s)

	s.SetDir(second)
	writeFile(t, second, "a.com.txt", "old")
	if got, _ := s.Lookup("a.com"); !reflect.DeepEqual(got, []string{"old"}) {
		t.Fatalf("lookup = %q", got)
	}
	eventually(t, s, second, "a.com", "new", []string{"new"})
}

func TestWatchStopsOnCancel(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "a", "b"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
