// Package provider defines the boundary to the external identity and
// data services. Everything behind these interfaces is an opaque remote
// API; the rest of the program never sees its transport or schema.
package provider

import (
	"context"
	"errors"

	"hdnotes-cli/internal/model"
)

// Auth is the identity/session provider. VerifyOTP is the only call
// that establishes a session; GetSession restores a previously
// established one (e.g. from an earlier process).
//
// Implementations own the ambient session and fire OnSessionChange
// callbacks whenever it changes (verify, sign-out, restore). Callbacks
// run synchronously on the calling goroutine.
type Auth interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*model.Session, error)
	GetSession(ctx context.Context) (*model.Session, error)
	OnSessionChange(fn func(*model.Session)) (cancel func())
	SignOut(ctx context.Context) error
}

// Data is the note storage provider. Every operation is scoped to an
// owner identity; implementations must reject cross-owner access.
type Data interface {
	ListNotes(ctx context.Context, ownerID string) ([]model.Note, error)
	InsertNote(ctx context.Context, ownerID, title, content string) (model.Note, error)
	DeleteNote(ctx context.Context, id, ownerID string) error
}

// Error is a service-reported failure. Its message is surfaced to the
// user verbatim; it never changes the caller's phase.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds a provider error with a plain message.
func Errorf(message string) error { return &Error{Message: message} }

// IsProviderError reports whether err is (or wraps) a provider Error.
func IsProviderError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}
