package session

import (
	"testing"

	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/provider"
)

func establish(t *testing.T, f *provider.Fake, email string) *model.Session {
	t.Helper()
	ctx := t.Context()
	if err := f.SendOTP(ctx, email); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	sess, err := f.VerifyOTP(ctx, email, f.IssuedCode(email))
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	return sess
}

func TestManager_NotReadyBeforeStart(t *testing.T) {
	t.Parallel()

	m := NewManager(provider.NewFake())
	if m.Ready() {
		t.Fatalf("ready must be false before Start")
	}
	if m.Current() != nil || m.Identity() != nil {
		t.Fatalf("no session state before Start")
	}
}

func TestManager_StartRestoresExistingSession(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	want := establish(t, f, "user@example.com")

	m := NewManager(f)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)

	if !m.Ready() {
		t.Fatalf("ready must be true after Start")
	}
	got := m.Current()
	if got == nil || got.AccessToken != want.AccessToken {
		t.Fatalf("expected the restored session; got %#v", got)
	}
	if id := m.Identity(); id == nil || id.Email != "user@example.com" {
		t.Fatalf("expected the restored identity; got %#v", id)
	}
}

func TestManager_StartWithNoSessionIsReadyAndEmpty(t *testing.T) {
	t.Parallel()

	m := NewManager(provider.NewFake())
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)

	if !m.Ready() {
		t.Fatalf("absence of a session still means ready")
	}
	if m.Current() != nil {
		t.Fatalf("expected no session")
	}
}

func TestManager_SubscribeNotifiedOnChange(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	m := NewManager(f)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)

	var got []*model.Session
	cancel := m.Subscribe(func(s *model.Session) { got = append(got, s) })
	defer cancel()

	establish(t, f, "user@example.com")
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("expected one sign-in notification; got %v", got)
	}
	if m.Current() == nil {
		t.Fatalf("manager state must be replaced before notifying")
	}

	if err := f.SignOut(t.Context()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(got) != 2 || got[1] != nil {
		t.Fatalf("expected a nil sign-out notification; got %v", got)
	}
	if m.Current() != nil {
		t.Fatalf("expected session cleared")
	}
}

func TestManager_UnsubscribedCallbackNotCalled(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	m := NewManager(f)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)

	calls := 0
	cancel := m.Subscribe(func(*model.Session) { calls++ })
	cancel()

	establish(t, f, "user@example.com")
	if calls != 0 {
		t.Fatalf("cancelled subscriber must not be notified; got %d calls", calls)
	}
}

func TestManager_CloseDropsLateNotifications(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	m := NewManager(f)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	calls := 0
	m.Subscribe(func(*model.Session) { calls++ })
	m.Close()

	establish(t, f, "user@example.com")
	if calls != 0 {
		t.Fatalf("notifications after Close must be dropped; got %d calls", calls)
	}
	if m.Current() != nil {
		t.Fatalf("state must not change after Close")
	}
}

func TestManager_ReplaceIsWholesale(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	m := NewManager(f)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(m.Close)

	first := establish(t, f, "first@example.com")
	second := establish(t, f, "second@example.com")
	if first.Identity.ID == second.Identity.ID {
		t.Fatalf("fake issued the same identity twice")
	}

	got := m.Current()
	if got == nil || got.AccessToken != second.AccessToken {
		t.Fatalf("expected the latest session only; got %#v", got)
	}
	if id := m.Identity(); id.Email != "second@example.com" {
		t.Fatalf("expected the latest identity; got %#v", id)
	}
}
