package provider

import (
	"testing"
	"time"
)

func TestFake_CodeIsSingleUse(t *testing.T) {
	t.Parallel()

	f := NewFake()
	ctx := t.Context()
	if err := f.SendOTP(ctx, "user@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := f.IssuedCode("user@example.com")

	if _, err := f.VerifyOTP(ctx, "user@example.com", code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if _, err := f.VerifyOTP(ctx, "user@example.com", code); err == nil {
		t.Fatalf("a consumed code must not verify again")
	}
}

func TestFake_SameEmailKeepsIdentity(t *testing.T) {
	t.Parallel()

	f := NewFake()
	ctx := t.Context()

	signIn := func() string {
		if err := f.SendOTP(ctx, "user@example.com"); err != nil {
			t.Fatalf("SendOTP: %v", err)
		}
		s, err := f.VerifyOTP(ctx, "user@example.com", f.IssuedCode("user@example.com"))
		if err != nil {
			t.Fatalf("VerifyOTP: %v", err)
		}
		return s.Identity.ID
	}

	first := signIn()
	second := signIn()
	if first != second {
		t.Fatalf("the same email must map to one identity; got %q and %q", first, second)
	}
}

func TestFake_ListIsNewestFirst(t *testing.T) {
	t.Parallel()

	f := NewFake()
	ctx := t.Context()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	f.SetNow(func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	})

	for _, title := range []string{"first", "second", "third"} {
		if _, err := f.InsertNote(ctx, "uid-1", title, "c"); err != nil {
			t.Fatalf("InsertNote: %v", err)
		}
	}

	ns, err := f.ListNotes(ctx, "uid-1")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(ns) != 3 || ns[0].Title != "third" || ns[2].Title != "first" {
		t.Fatalf("expected newest first; got %v", ns)
	}
}

func TestFake_FixedCode(t *testing.T) {
	t.Parallel()

	f := NewFake()
	f.FixedCode = "123456"
	if err := f.SendOTP(t.Context(), "user@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, err := f.VerifyOTP(t.Context(), "user@example.com", "123456"); err != nil {
		t.Fatalf("the fixed code must verify: %v", err)
	}
}
