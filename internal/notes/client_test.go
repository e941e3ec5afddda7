package notes

import (
	"testing"

	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/provider"
	"hdnotes-cli/internal/session"
)

// signIn runs the full OTP round trip against the fake so the session
// manager observes the resulting change notification.
func signIn(t *testing.T, f *provider.Fake, mgr *session.Manager, email string) model.Identity {
	t.Helper()
	ctx := t.Context()
	if err := f.SendOTP(ctx, email); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	sess, err := f.VerifyOTP(ctx, email, f.IssuedCode(email))
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if got := mgr.Identity(); got == nil || got.ID != sess.Identity.ID {
		t.Fatalf("manager did not pick up the new session: %v", got)
	}
	return sess.Identity
}

func newSignedInClient(t *testing.T, email string) (*Client, *provider.Fake, *session.Manager, model.Identity) {
	t.Helper()
	f := provider.NewFake()
	mgr := session.NewManager(f)
	if err := mgr.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Close)
	id := signIn(t, f, mgr, email)
	return NewClient(mgr, f, f), f, mgr, id
}

func TestClient_NotSignedIn(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()
	mgr := session.NewManager(f)
	if err := mgr.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Close)
	c := NewClient(mgr, f, f)

	if _, err := c.List(t.Context()); err == nil {
		t.Fatalf("expected an error listing without a session")
	}
	if _, err := c.Create(t.Context(), "a", "b"); err == nil {
		t.Fatalf("expected an error creating without a session")
	}
	if f.ListCalls != 0 || f.InsertCalls != 0 {
		t.Fatalf("provider must not be reached without a session: list=%d insert=%d", f.ListCalls, f.InsertCalls)
	}
}

func TestClient_CreateScopesOwnerToIdentity(t *testing.T) {
	t.Parallel()

	c, _, _, id := newSignedInClient(t, "user@example.com")
	ctx := t.Context()

	if _, err := c.Create(ctx, "first", "one"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Create(ctx, "second", "two"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ns, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notes; got %d", len(ns))
	}
	for _, n := range ns {
		if n.OwnerID != id.ID {
			t.Fatalf("note %q owned by %q, want %q", n.Title, n.OwnerID, id.ID)
		}
	}
}

func TestClient_CreateValidationBlocksProviderCall(t *testing.T) {
	t.Parallel()

	c, f, _, _ := newSignedInClient(t, "user@example.com")

	if _, err := c.Create(t.Context(), "", "content"); !model.IsValidation(err) {
		t.Fatalf("expected a validation error; got %v", err)
	}
	if f.InsertCalls != 0 {
		t.Fatalf("validation failure must not reach the provider; got %d calls", f.InsertCalls)
	}
}

func TestClient_DeleteOtherOwnersNoteFails(t *testing.T) {
	t.Parallel()

	f := provider.NewFake()

	// Someone else's note, inserted directly.
	other, err := f.InsertNote(t.Context(), "other-owner", "theirs", "secret")
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}

	mgr := session.NewManager(f)
	if err := mgr.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Close)
	signIn(t, f, mgr, "user@example.com")
	c := NewClient(mgr, f, f)

	if err := c.Delete(t.Context(), other.ID); err == nil {
		t.Fatalf("expected cross-owner delete to fail")
	}
	ns, err := f.ListNotes(t.Context(), "other-owner")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("the other owner's note must survive; got %v", ns)
	}
}

func TestClient_RunMapsEffectsToEvents(t *testing.T) {
	t.Parallel()

	c, _, mgr, _ := newSignedInClient(t, "user@example.com")
	ctx := t.Context()

	ev := c.Run(ctx, Insert{Title: "t", Content: "c"})
	created, ok := ev.(Created)
	if !ok || created.Err != nil {
		t.Fatalf("expected successful Created; got %#v", ev)
	}

	ev = c.Run(ctx, List{})
	loaded, ok := ev.(Loaded)
	if !ok || loaded.Err != nil || len(loaded.Notes) != 1 {
		t.Fatalf("expected Loaded with one note; got %#v", ev)
	}

	ev = c.Run(ctx, Delete{ID: loaded.Notes[0].ID})
	deleted, ok := ev.(Deleted)
	if !ok || deleted.Err != nil || deleted.ID != loaded.Notes[0].ID {
		t.Fatalf("expected successful Deleted; got %#v", ev)
	}

	// SignOut yields no event; the session change does the teardown.
	if ev := c.Run(ctx, SignOut{}); ev != nil {
		t.Fatalf("expected no event from SignOut; got %#v", ev)
	}
	if mgr.Current() != nil {
		t.Fatalf("expected the manager to observe the sign-out")
	}
}

func TestClient_RunSignOutFailureComesBackAsEvent(t *testing.T) {
	t.Parallel()

	c, f, mgr, _ := newSignedInClient(t, "user@example.com")
	f.SignOutErr = provider.Errorf("logout failed")

	ev := c.Run(t.Context(), SignOut{})
	so, ok := ev.(SignedOut)
	if !ok || so.Err == nil || so.Err.Error() != "logout failed" {
		t.Fatalf("expected SignedOut with the provider message; got %#v", ev)
	}
	if mgr.Current() == nil {
		t.Fatalf("a failed sign-out must leave the session in place")
	}
}
