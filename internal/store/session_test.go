package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hdnotes-cli/internal/model"
)

func TestSessionCache_LoadMissingIsNil(t *testing.T) {
	t.Parallel()

	c := SessionCache{Dir: t.TempDir()}
	sess, err := c.LoadSession()
	if err != nil || sess != nil {
		t.Fatalf("expected (nil, nil); got %v, %v", sess, err)
	}
}

func TestSessionCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c := SessionCache{Dir: t.TempDir()}
	want := &model.Session{
		AccessToken: "tok-123",
		Identity:    model.Identity{ID: "uid-1", Email: "user@example.com", FullName: "Test User"},
		IssuedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := c.SaveSession(want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := c.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got == nil || got.AccessToken != want.AccessToken || got.Identity != want.Identity {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if !got.IssuedAt.Equal(want.IssuedAt) {
		t.Fatalf("issuedAt mismatch: %v vs %v", got.IssuedAt, want.IssuedAt)
	}
}

func TestSessionCache_TokenFileMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := SessionCache{Dir: dir}
	if err := c.SaveSession(&model.Session{AccessToken: "tok"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	fi, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("the token file must be private; expected 0600, got %o", perm)
	}
}

func TestSessionCache_CorruptFileIsNil(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := SessionCache{Dir: dir}
	sess, err := c.LoadSession()
	if err != nil || sess != nil {
		t.Fatalf("a corrupt cache is the same as no cache; got %v, %v", sess, err)
	}
}

func TestSessionCache_EmptyTokenIsNil(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := SessionCache{Dir: dir}
	if err := c.SaveSession(&model.Session{}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	sess, err := c.LoadSession()
	if err != nil || sess != nil {
		t.Fatalf("a tokenless cache entry is absence; got %v, %v", sess, err)
	}
}

func TestSessionCache_Clear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := SessionCache{Dir: dir}
	if err := c.SaveSession(&model.Session{AccessToken: "tok"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := c.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if sess, _ := c.LoadSession(); sess != nil {
		t.Fatalf("expected the cache empty after clear")
	}
	// Clearing an already-empty cache is not an error.
	if err := c.ClearSession(); err != nil {
		t.Fatalf("ClearSession (empty): %v", err)
	}
}
