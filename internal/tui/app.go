package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hdnotes-cli/internal/authflow"
	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/notes"
	"hdnotes-cli/internal/provider"
	"hdnotes-cli/internal/session"
)

// gate is the router state: a pure function of the session manager.
// Loading is an explicit third branch, not a default.
type gate int

const (
	gateLoading gate = iota
	gateAuth
	gateNotes
)

type sessionReadyMsg struct{ err error }
type sessionChangedMsg struct{ sess *model.Session }

// authResultMsg/notesResultMsg carry provider results back into the
// loop, tagged with the sequence of the page that issued them. A result
// arriving for an unmounted (or remounted) page is dropped instead of
// being applied to state that no longer exists.
type authResultMsg struct {
	seq int
	ev  authflow.Event
}

type notesResultMsg struct {
	gen int
	ev  notes.Event
}

type appModel struct {
	mgr    *session.Manager
	auth   provider.Auth
	data   provider.Data
	client *notes.Client

	width  int
	height int

	gate      gate
	authPage  authPage
	notesPage notesPage

	authSeq  int
	notesGen int

	changes chan *model.Session
	// unsub cancels the manager subscription; Run calls it once the
	// program exits.
	unsub func()

	// probeErr is a failed initial session probe, shown on the auth
	// page; the probe result is still "no session".
	probeErr string
}

func newAppModel(mgr *session.Manager, auth provider.Auth, data provider.Data) appModel {
	m := appModel{
		mgr:     mgr,
		auth:    auth,
		data:    data,
		client:  notes.NewClient(mgr, data, auth),
		gate:    gateLoading,
		changes: make(chan *model.Session, 8),
	}
	// The subscription callback runs on the provider's goroutine; hand
	// the change to the Elm loop instead of touching model state here.
	m.unsub = mgr.Subscribe(func(s *model.Session) {
		select {
		case m.changes <- s:
		default:
		}
	})
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.startSession(), m.waitForChange())
}

func (m appModel) startSession() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		// No client-side timeout: a hung provider leaves the loading
		// state in place.
		return sessionReadyMsg{err: mgr.Start(context.Background())}
	}
}

func (m appModel) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		return sessionChangedMsg{sess: <-ch}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmd tea.Cmd
		m.notesPage, _, cmd = m.notesPage.update(msg)
		return m, cmd

	case sessionReadyMsg:
		if msg.err != nil {
			m.probeErr = msg.err.Error()
		}
		return m.route()

	case sessionChangedMsg:
		mm, cmd := m.route()
		return mm, tea.Batch(cmd, m.waitForChange())

	case authResultMsg:
		if m.gate != gateAuth || msg.seq != m.authSeq {
			return m, nil
		}
		p, effs := m.authPage.apply(msg.ev)
		m.authPage = p
		return m, m.authCmds(effs)

	case notesResultMsg:
		if m.gate != gateNotes || msg.gen != m.notesGen {
			return m, nil
		}
		p, effs := m.notesPage.apply(msg.ev)
		m.notesPage = p
		return m, m.notesCmds(effs)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.gate {
		case gateAuth:
			p, effs, cmd := m.authPage.update(msg)
			m.authPage = p
			return m, tea.Batch(cmd, m.authCmds(effs))
		case gateNotes:
			if msg.String() == "q" && !m.notesPage.st.ComposerOpen && m.notesPage.confirmID == "" {
				return m, tea.Quit
			}
			p, effs, cmd := m.notesPage.update(msg)
			m.notesPage = p
			return m, tea.Batch(cmd, m.notesCmds(effs))
		}
		return m, nil
	}

	return m, nil
}

// route re-evaluates the gate from session manager state and mounts the
// matching page. Mounting resets page state; bumping the sequence
// orphans any responses still in flight for the previous mount.
func (m appModel) route() (appModel, tea.Cmd) {
	var want gate
	switch {
	case !m.mgr.Ready():
		want = gateLoading
	case m.mgr.Current() == nil:
		want = gateAuth
	default:
		want = gateNotes
	}
	if want == m.gate {
		return m, nil
	}
	m.gate = want

	switch want {
	case gateAuth:
		m.authSeq++
		m.authPage = newAuthPage(authflow.ModeSignUp)
		return m, nil
	case gateNotes:
		m.notesGen++
		id := m.mgr.Identity()
		p := newNotesPage(*id)
		p.width = m.width
		p.height = m.height
		p.resize()
		p, effs := p.mount()
		m.notesPage = p
		return m, m.notesCmds(effs)
	}
	return m, nil
}

func (m appModel) authCmds(effs []authflow.Effect) tea.Cmd {
	if len(effs) == 0 {
		return nil
	}
	seq := m.authSeq
	auth := m.auth
	cmds := make([]tea.Cmd, 0, len(effs))
	for _, eff := range effs {
		switch eff := eff.(type) {
		case authflow.SendOTP:
			cmds = append(cmds, func() tea.Msg {
				err := auth.SendOTP(context.Background(), eff.Email)
				return authResultMsg{seq: seq, ev: authflow.OTPSent{Err: err}}
			})
		case authflow.VerifyOTP:
			cmds = append(cmds, func() tea.Msg {
				// Success establishes the session provider-side; the
				// router reacts to the change notification, not to
				// this result.
				_, err := auth.VerifyOTP(context.Background(), eff.Email, eff.Code)
				return authResultMsg{seq: seq, ev: authflow.Verified{Err: err}}
			})
		}
	}
	return tea.Batch(cmds...)
}

func (m appModel) notesCmds(effs []notes.Effect) tea.Cmd {
	if len(effs) == 0 {
		return nil
	}
	gen := m.notesGen
	client := m.client
	cmds := make([]tea.Cmd, 0, len(effs))
	for _, eff := range effs {
		eff := eff
		cmds = append(cmds, func() tea.Msg {
			ev := client.Run(context.Background(), eff)
			if ev == nil {
				return nil
			}
			return notesResultMsg{gen: gen, ev: ev}
		})
	}
	return tea.Batch(cmds...)
}

func (m appModel) View() string {
	switch m.gate {
	case gateLoading:
		return placeCentered(m.width, m.height, styleMuted().Render("Loading…"))

	case gateAuth:
		card := m.authPage.view(m.width)
		if m.probeErr != "" {
			card = styleError().Render("session restore failed: "+m.probeErr) + "\n\n" + card
		}
		footer := styleMuted().Render("ctrl+c: quit")
		content := lipgloss.JoinVertical(lipgloss.Left, card, "", footer)
		return placeCentered(m.width, m.height, content)

	case gateNotes:
		return m.notesPage.view()
	}
	return ""
}
