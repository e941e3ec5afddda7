package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hdnotes-cli/internal/authflow"
)

// authPage renders the sign-up/sign-in flow and feeds user input into
// the authflow machine. All flow decisions live in authflow.Apply; this
// type only maps key events to machine events and state to pixels.
type authPage struct {
	st authflow.State

	name  textinput.Model
	dob   textinput.Model
	email textinput.Model
	otp   textinput.Model

	focus authField
}

type authField int

const (
	fieldName authField = iota
	fieldDOB
	fieldEmail
	fieldOTP
)

func newAuthPage(mode authflow.Mode) authPage {
	p := authPage{st: authflow.NewState(mode)}

	p.name = textinput.New()
	p.name.Placeholder = "Your Name"
	p.name.CharLimit = 100
	p.name.Width = 36

	p.dob = textinput.New()
	p.dob.Placeholder = "YYYY-MM-DD"
	p.dob.CharLimit = 10
	p.dob.Width = 36

	p.email = textinput.New()
	p.email.Placeholder = "you@example.com"
	p.email.CharLimit = 200
	p.email.Width = 36

	p.otp = textinput.New()
	p.otp.Placeholder = "123456"
	p.otp.CharLimit = 6
	p.otp.Width = 36
	p.otp.EchoMode = textinput.EchoPassword
	p.otp.EchoCharacter = '•'

	p.focus = p.visibleFields()[0]
	p.applyFocus()
	return p
}

// visibleFields depends on mode and phase: sign-up shows the profile
// fields, the OTP field appears once a code has been sent.
func (p authPage) visibleFields() []authField {
	var fields []authField
	if p.st.Mode == authflow.ModeSignUp {
		fields = append(fields, fieldName, fieldDOB)
	}
	fields = append(fields, fieldEmail)
	if p.st.Phase == authflow.PhaseAwaitingOTP {
		fields = append(fields, fieldOTP)
	}
	return fields
}

func (p *authPage) applyFocus() {
	for _, f := range []authField{fieldName, fieldDOB, fieldEmail, fieldOTP} {
		in := p.input(f)
		if f == p.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (p *authPage) input(f authField) *textinput.Model {
	switch f {
	case fieldName:
		return &p.name
	case fieldDOB:
		return &p.dob
	case fieldOTP:
		return &p.otp
	default:
		return &p.email
	}
}

func (p *authPage) moveFocus(delta int) {
	fields := p.visibleFields()
	cur := 0
	for i, f := range fields {
		if f == p.focus {
			cur = i
			break
		}
	}
	cur = (cur + delta + len(fields)) % len(fields)
	p.focus = fields[cur]
	p.applyFocus()
}

// apply routes a machine event through authflow.Apply and keeps the
// inputs in sync with machine-driven state changes.
func (p authPage) apply(ev authflow.Event) (authPage, []authflow.Effect) {
	prevPhase := p.st.Phase
	st, effs := authflow.Apply(p.st, ev)
	p.st = st

	if p.st.OTPVisible {
		p.otp.EchoMode = textinput.EchoNormal
	} else {
		p.otp.EchoMode = textinput.EchoPassword
	}

	if p.st.Phase != prevPhase {
		if p.st.Phase == authflow.PhaseAwaitingOTP {
			p.focus = fieldOTP
		} else {
			// Back to the email phase: machine cleared the code.
			p.otp.SetValue("")
			p.focus = fieldEmail
		}
		p.applyFocus()
	}
	return p, effs
}

func (p authPage) update(msg tea.Msg) (authPage, []authflow.Effect, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, nil
	}

	switch key.String() {
	case "tab", "down":
		p.moveFocus(1)
		return p, nil, nil
	case "shift+tab", "up":
		p.moveFocus(-1)
		return p, nil, nil
	case "enter":
		p2, effs := p.apply(authflow.Submit{})
		return p2, effs, nil
	case "ctrl+o":
		p2, effs := p.apply(authflow.ToggleOTPVisible{})
		return p2, effs, nil
	case "ctrl+e":
		p2, effs := p.apply(authflow.UseDifferentEmail{})
		return p2, effs, nil
	case "ctrl+t":
		// Switch sign-up <-> sign-in; the flow resets as on mount.
		other := authflow.ModeSignIn
		if p.st.Mode == authflow.ModeSignIn {
			other = authflow.ModeSignUp
		}
		return newAuthPage(other), nil, nil
	}

	// Typing goes to the focused input, then into the machine so its
	// state stays authoritative.
	in := p.input(p.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)

	var ev authflow.Event
	switch p.focus {
	case fieldName:
		ev = authflow.SetName{Value: p.name.Value()}
	case fieldDOB:
		ev = authflow.SetDOB{Value: p.dob.Value()}
	case fieldEmail:
		ev = authflow.SetEmail{Value: p.email.Value()}
	case fieldOTP:
		ev = authflow.SetOTP{Value: p.otp.Value()}
	}
	p2, effs := p.apply(ev)
	return p2, effs, cmd
}

func (p authPage) view(width int) string {
	bodyW := 44
	if width-4 < bodyW {
		bodyW = width - 4
	}
	if bodyW < 24 {
		bodyW = 24
	}

	title := "Sign up"
	subtitle := "Sign up to enjoy the feature of HD"
	if p.st.Mode == authflow.ModeSignIn {
		title = "Sign in"
		subtitle = "Welcome back to HD"
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(subtitle))
	b.WriteString("\n\n")

	if p.st.Err != "" {
		b.WriteString(styleError().Width(bodyW).Render(p.st.Err))
		b.WriteString("\n\n")
	}

	label := styleMuted()
	for _, f := range p.visibleFields() {
		switch f {
		case fieldName:
			b.WriteString(label.Render("Your Name"))
		case fieldDOB:
			b.WriteString(label.Render("Date of Birth"))
		case fieldEmail:
			b.WriteString(label.Render("Email"))
		case fieldOTP:
			hint := "ctrl+o: show"
			if p.st.OTPVisible {
				hint = "ctrl+o: hide"
			}
			b.WriteString(label.Render("OTP") + "  " + styleMuted().Render(hint))
		}
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, p.input(f).View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case p.st.Submitting && p.st.Phase == authflow.PhaseEmail:
		b.WriteString(styleMuted().Render("Sending…"))
	case p.st.Submitting:
		b.WriteString(styleMuted().Render("Verifying…"))
	case p.st.Phase == authflow.PhaseEmail:
		b.WriteString(styleMuted().Render("enter: send OTP"))
	default:
		b.WriteString(styleMuted().Render("enter: verify & sign in   ctrl+e: use a different email"))
	}
	b.WriteString("\n")

	link := "ctrl+t: already have an account? sign in"
	if p.st.Mode == authflow.ModeSignIn {
		link = "ctrl+t: new here? create account"
	}
	b.WriteString(styleMuted().Render(link))

	return b.String()
}
