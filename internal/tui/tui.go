package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"hdnotes-cli/internal/provider"
	"hdnotes-cli/internal/session"
)

func Run(auth provider.Auth, data provider.Data) error {
	applyColorProfilePreference()
	applyThemePreference()

	mgr := session.NewManager(auth)
	defer mgr.Close()

	m := newAppModel(mgr, auth, data)
	defer m.unsub()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
