// Package authflow implements the email → OTP → verify state machine
// as an explicit transition function over immutable state values, so
// the flow is testable without any presentation layer. The TUI and the
// CLI both drive the same machine.
package authflow

// Phase is the named state of the flow. Verification success is a
// terminal exit, not a phase: control passes to the router via the
// session manager's change notification.
type Phase int

const (
	PhaseEmail Phase = iota
	PhaseAwaitingOTP
)

// Mode selects the sign-up or sign-in variant. The phases and
// validation rules are identical; sign-up additionally collects
// profile fields.
type Mode int

const (
	ModeSignUp Mode = iota
	ModeSignIn
)

// State is the complete flow state. It is owned by the mounted
// controller and reset on mount.
type State struct {
	Mode  Mode
	Phase Phase

	Email string
	OTP   string

	// Sign-up profile fields. Collected per the UI but not persisted;
	// profile storage is a separately specified extension.
	Name string
	DOB  string

	// OTPVisible toggles masking of the code field. Purely local; no
	// validation or side effect.
	OTPVisible bool

	// Err is the single visible error slot. Cleared at the start of
	// every attempt.
	Err string

	// Submitting is true while a provider call is in flight. It gates
	// re-submission; there is no request cancellation.
	Submitting bool
}

func NewState(mode Mode) State {
	return State{Mode: mode, Phase: PhaseEmail}
}

// Event is an input to the transition function: either user intent or
// the result of a previously requested effect.
type Event interface{ isEvent() }

type SetEmail struct{ Value string }
type SetOTP struct{ Value string }
type SetName struct{ Value string }
type SetDOB struct{ Value string }

// ToggleOTPVisible flips code masking.
type ToggleOTPVisible struct{}

// Submit is the primary action for the current phase: request a code
// in PhaseEmail, verify it in PhaseAwaitingOTP.
type Submit struct{}

// OTPSent reports the result of a SendOTP effect.
type OTPSent struct{ Err error }

// Verified reports the result of a VerifyOTP effect. On success the
// provider has already established the session; the machine performs
// no navigation of its own.
type Verified struct{ Err error }

// UseDifferentEmail returns from PhaseAwaitingOTP to PhaseEmail,
// clearing the code and the error and nothing else.
type UseDifferentEmail struct{}

// SwitchMode resets the flow for the other variant.
type SwitchMode struct{ Mode Mode }

func (SetEmail) isEvent()          {}
func (SetOTP) isEvent()            {}
func (SetName) isEvent()           {}
func (SetDOB) isEvent()            {}
func (ToggleOTPVisible) isEvent()  {}
func (Submit) isEvent()            {}
func (OTPSent) isEvent()           {}
func (Verified) isEvent()          {}
func (UseDifferentEmail) isEvent() {}
func (SwitchMode) isEvent()        {}

// Effect is a provider call the caller must perform, feeding the
// result back as an OTPSent/Verified event.
type Effect interface{ isEffect() }

type SendOTP struct{ Email string }
type VerifyOTP struct{ Email, Code string }

func (SendOTP) isEffect()   {}
func (VerifyOTP) isEffect() {}

// Apply is the transition function: (state, event) -> (state, effects).
// It never performs I/O.
func Apply(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case SetEmail:
		s.Email = ev.Value
		return s, nil
	case SetOTP:
		s.OTP = ev.Value
		return s, nil
	case SetName:
		s.Name = ev.Value
		return s, nil
	case SetDOB:
		s.DOB = ev.Value
		return s, nil
	case ToggleOTPVisible:
		s.OTPVisible = !s.OTPVisible
		return s, nil

	case Submit:
		if s.Submitting {
			// Busy flag gates double-submits; no queuing.
			return s, nil
		}
		s.Err = ""
		switch s.Phase {
		case PhaseEmail:
			if err := ValidateEmail(s.Email); err != nil {
				s.Err = err.Error()
				return s, nil
			}
			s.Submitting = true
			return s, []Effect{SendOTP{Email: s.Email}}
		case PhaseAwaitingOTP:
			if err := ValidateEmail(s.Email); err != nil {
				s.Err = err.Error()
				return s, nil
			}
			if err := ValidateOTP(s.OTP); err != nil {
				s.Err = err.Error()
				return s, nil
			}
			s.Submitting = true
			return s, []Effect{VerifyOTP{Email: s.Email, Code: s.OTP}}
		}
		return s, nil

	case OTPSent:
		s.Submitting = false
		if ev.Err != nil {
			// Stay in PhaseEmail; retry is user-initiated.
			s.Err = ev.Err.Error()
			return s, nil
		}
		s.Phase = PhaseAwaitingOTP
		s.Err = ""
		return s, nil

	case Verified:
		s.Submitting = false
		if ev.Err != nil {
			// Provider errors never regress the phase; the code is not
			// auto-cleared so the user can correct and resubmit.
			s.Err = ev.Err.Error()
			return s, nil
		}
		s.Err = ""
		return s, nil

	case UseDifferentEmail:
		if s.Phase != PhaseAwaitingOTP {
			return s, nil
		}
		s.Phase = PhaseEmail
		s.OTP = ""
		s.Err = ""
		return s, nil

	case SwitchMode:
		return NewState(ev.Mode), nil
	}
	return s, nil
}
