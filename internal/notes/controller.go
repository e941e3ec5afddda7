// Package notes is the session-scoped resource controller: listing,
// creating and deleting notes for the active identity, plus the
// transient UI state around those operations (drafts, busy flag, last
// error). Like authflow, the state logic is an explicit transition
// function; provider I/O happens only in Client.
package notes

import (
	"unicode/utf8"

	"hdnotes-cli/internal/model"
)

const (
	TitleMaxLen   = 100
	ContentMaxLen = 2000
)

// State is the controller's complete local state. Notes are ordered
// newest-first and replaced wholesale on every reload.
type State struct {
	Notes []model.Note

	DraftTitle   string
	DraftContent string
	ComposerOpen bool

	// Busy is true while a create is in flight; it gates resubmission.
	Busy bool

	// Err is the single visible error slot, cleared at the start of
	// every attempt.
	Err string
}

func NewState() State { return State{} }

type Event interface{ isEvent() }

type SetDraftTitle struct{ Value string }
type SetDraftContent struct{ Value string }
type ToggleComposer struct{}

// Reload asks for a wholesale refresh of the list.
type Reload struct{}

// SubmitCreate validates the draft and, if valid, requests an insert.
type SubmitCreate struct{}

// DeleteByID requests deletion of one note.
type DeleteByID struct{ ID string }

// SignOutRequested delegates to the provider. No local cleanup: the
// session manager's change notification unmounts this controller.
type SignOutRequested struct{}

// Loaded reports the result of a List effect.
type Loaded struct {
	Notes []model.Note
	Err   error
}

// Created reports the result of an Insert effect.
type Created struct{ Err error }

// Deleted reports the result of a Delete effect.
type Deleted struct {
	ID  string
	Err error
}

// SignedOut reports a failed SignOut effect. Success produces no event:
// the session change notification unmounts the controller.
type SignedOut struct{ Err error }

func (SetDraftTitle) isEvent()    {}
func (SetDraftContent) isEvent()  {}
func (ToggleComposer) isEvent()   {}
func (Reload) isEvent()           {}
func (SubmitCreate) isEvent()     {}
func (DeleteByID) isEvent()       {}
func (SignOutRequested) isEvent() {}
func (Loaded) isEvent()           {}
func (Created) isEvent()          {}
func (Deleted) isEvent()          {}
func (SignedOut) isEvent()        {}

// Effect is a provider operation the caller must perform. The owner
// identity is supplied by the executor from the session manager, never
// from client-editable state.
type Effect interface{ isEffect() }

type List struct{}
type Insert struct{ Title, Content string }
type Delete struct{ ID string }
type SignOut struct{}

func (List) isEffect()    {}
func (Insert) isEffect()  {}
func (Delete) isEffect()  {}
func (SignOut) isEffect() {}

// Apply is the transition function: (state, event) -> (state, effects).
func Apply(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SetDraftTitle:
		s.DraftTitle = ev.Value
		return s, nil
	case SetDraftContent:
		s.DraftContent = ev.Value
		return s, nil
	case ToggleComposer:
		s.ComposerOpen = !s.ComposerOpen
		return s, nil

	case Reload:
		s.Err = ""
		return s, []Effect{List{}}

	case SubmitCreate:
		if s.Busy {
			return s, nil
		}
		s.Err = ""
		if err := ValidateDraft(s.DraftTitle, s.DraftContent); err != nil {
			// No provider call; drafts stay as typed.
			s.Err = err.Error()
			return s, nil
		}
		s.Busy = true
		return s, []Effect{Insert{Title: s.DraftTitle, Content: s.DraftContent}}

	case Created:
		s.Busy = false
		if ev.Err != nil {
			// Drafts remain intact for resubmission.
			s.Err = ev.Err.Error()
			return s, nil
		}
		s.DraftTitle = ""
		s.DraftContent = ""
		s.ComposerOpen = false
		return s, []Effect{List{}}

	case Loaded:
		if ev.Err != nil {
			// Non-fatal: the previous list is retained.
			s.Err = ev.Err.Error()
			return s, nil
		}
		s.Notes = ev.Notes
		return s, nil

	case DeleteByID:
		s.Err = ""
		return s, []Effect{Delete{ID: ev.ID}}

	case Deleted:
		if ev.Err != nil {
			// Local state unchanged on failure.
			s.Err = ev.Err.Error()
			return s, nil
		}
		s.Notes = removeByID(s.Notes, ev.ID)
		return s, nil

	case SignOutRequested:
		return s, []Effect{SignOut{}}

	case SignedOut:
		if ev.Err != nil {
			// Still signed in; surface the failure where the user is.
			s.Err = ev.Err.Error()
		}
		return s, nil
	}
	return s, nil
}

func removeByID(notes []model.Note, id string) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// ValidateDraft checks title then content and reports the first
// violated field.
func ValidateDraft(title, content string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	return ValidateContent(content)
}

// Limits count characters, not bytes, matching the input widgets'
// CharLimit.
func ValidateTitle(title string) error {
	if title == "" {
		return model.ErrValidation("title", "Title is required")
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return model.ErrValidation("title", "Max 100 chars")
	}
	return nil
}

func ValidateContent(content string) error {
	if content == "" {
		return model.ErrValidation("content", "Content is required")
	}
	if utf8.RuneCountInString(content) > ContentMaxLen {
		return model.ErrValidation("content", "Max 2000 chars")
	}
	return nil
}
