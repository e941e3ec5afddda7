package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hdnotes-cli/internal/model"
)

// Fake is an in-memory provider used by tests and by --demo mode. It
// implements both Auth and Data with the same owner-scoping rules the
// real service enforces.
type Fake struct {
	mu        sync.Mutex
	codes     map[string]string         // email -> pending OTP
	users     map[string]model.Identity // email -> identity
	notes     []model.Note
	session   *model.Session
	listeners map[int]func(*model.Session)
	nextID    int
	now       func() time.Time

	// FixedCode, when set, is issued for every SendOTP instead of a
	// random code. Demo mode uses this so the code is knowable.
	FixedCode string

	// Per-call failure injection for tests.
	SendOTPErr   error
	VerifyOTPErr error
	SignOutErr   error
	ListErr      error
	InsertErr    error
	DeleteErr    error

	// Call counters let tests assert that validation blocked a call.
	SendOTPCalls   int
	VerifyOTPCalls int
	SignOutCalls   int
	ListCalls      int
	InsertCalls    int
	DeleteCalls    int
}

func NewFake() *Fake {
	return &Fake{
		codes:     map[string]string{},
		users:     map[string]model.Identity{},
		listeners: map[int]func(*model.Session){},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the clock (tests need distinct createdAt values).
func (f *Fake) SetNow(now func() time.Time) { f.now = now }

func (f *Fake) SendOTP(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SendOTPCalls++
	if f.SendOTPErr != nil {
		return f.SendOTPErr
	}
	code := f.FixedCode
	if code == "" {
		code = fmt.Sprintf("%06d", rand.Intn(1000000))
	}
	f.codes[email] = code
	return nil
}

// IssuedCode returns the pending OTP for email, for tests.
func (f *Fake) IssuedCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

func (f *Fake) VerifyOTP(ctx context.Context, email, code string) (*model.Session, error) {
	f.mu.Lock()
	f.VerifyOTPCalls++
	if f.VerifyOTPErr != nil {
		f.mu.Unlock()
		return nil, f.VerifyOTPErr
	}
	want, ok := f.codes[email]
	if !ok || want != code {
		f.mu.Unlock()
		return nil, Errorf("invalid code")
	}
	delete(f.codes, email) // single use
	id, ok := f.users[email]
	if !ok {
		id = model.Identity{ID: uuid.NewString(), Email: email}
		f.users[email] = id
	}
	sess := &model.Session{AccessToken: uuid.NewString(), Identity: id, IssuedAt: f.now()}
	f.session = sess
	f.mu.Unlock()

	f.notify(sess)
	return sess, nil
}

func (f *Fake) GetSession(ctx context.Context) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	if f.SignOutErr != nil {
		// Failure leaves the session in place.
		f.mu.Unlock()
		return f.SignOutErr
	}
	f.session = nil
	f.mu.Unlock()
	f.notify(nil)
	return nil
}

func (f *Fake) OnSessionChange(fn func(*model.Session)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *Fake) notify(sess *model.Session) {
	f.mu.Lock()
	fns := make([]func(*model.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}

func (f *Fake) ListNotes(ctx context.Context, ownerID string) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []model.Note
	for _, n := range f.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Fake) InsertNote(ctx context.Context, ownerID, title, content string) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InsertCalls++
	if f.InsertErr != nil {
		return model.Note{}, f.InsertErr
	}
	n := model.Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: f.now(),
	}
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *Fake) DeleteNote(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, n := range f.notes {
		if n.ID == id {
			if n.OwnerID != ownerID {
				return Errorf("note not found")
			}
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return Errorf("note not found")
}
