package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hdnotes-cli/internal/model"
	"hdnotes-cli/internal/notes"
)

// notesPage renders the session-scoped notes view. State logic lives in
// notes.Apply; this type maps keys to events and state to pixels.
type notesPage struct {
	st       notes.State
	identity model.Identity

	noteList list.Model

	title   textinput.Model
	content textarea.Model
	// composerFocus: 0 = title, 1 = content.
	composerFocus int

	// confirmID is set while the delete confirmation modal is open.
	confirmID    string
	confirmTitle string
	confirmFocus confirmModalFocus

	width  int
	height int
}

type noteItem struct {
	note model.Note
}

func (i noteItem) FilterValue() string { return i.note.Title }
func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string {
	return i.note.CreatedAt.Local().Format("2006-01-02 15:04")
}

func newNotesPage(identity model.Identity) notesPage {
	p := notesPage{st: notes.NewState(), identity: identity}

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Notes"
	// We render our own header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Plain-letter keybindings below conflict with list filtering.
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("note", "notes")
	p.noteList = l

	p.title = textinput.New()
	p.title.Placeholder = "Note title"
	p.title.CharLimit = notes.TitleMaxLen
	p.title.Width = 40

	p.content = textarea.New()
	p.content.Placeholder = "Write your note..."
	p.content.CharLimit = notes.ContentMaxLen
	p.content.SetWidth(60)
	p.content.SetHeight(6)
	p.content.ShowLineNumbers = false

	return p
}

// mount returns the initial effects: one wholesale list load.
func (p notesPage) mount() (notesPage, []notes.Effect) {
	return p.apply(notes.Reload{})
}

func (p notesPage) apply(ev notes.Event) (notesPage, []notes.Effect) {
	st, effs := notes.Apply(p.st, ev)
	composerWasOpen := p.st.ComposerOpen
	p.st = st

	if _, ok := ev.(notes.Loaded); ok {
		p.refreshList()
	}
	if _, ok := ev.(notes.Deleted); ok {
		p.refreshList()
	}

	if p.st.ComposerOpen && !composerWasOpen {
		p.title.SetValue(p.st.DraftTitle)
		p.content.SetValue(p.st.DraftContent)
		p.composerFocus = 0
		p.title.Focus()
		p.content.Blur()
	}
	if !p.st.ComposerOpen && composerWasOpen {
		p.title.Blur()
		p.content.Blur()
		// Machine-driven clear (create success) must reach the inputs.
		p.title.SetValue(p.st.DraftTitle)
		p.content.SetValue(p.st.DraftContent)
	}
	return p, effs
}

func (p *notesPage) refreshList() {
	curID := ""
	if it, ok := p.noteList.SelectedItem().(noteItem); ok {
		curID = it.note.ID
	}
	items := make([]list.Item, 0, len(p.st.Notes))
	for _, n := range p.st.Notes {
		items = append(items, noteItem{note: n})
	}
	p.noteList.SetItems(items)
	if curID != "" {
		for i, it := range p.noteList.Items() {
			if ni, ok := it.(noteItem); ok && ni.note.ID == curID {
				p.noteList.Select(i)
				break
			}
		}
	}
}

func (p notesPage) update(msg tea.Msg) (notesPage, []notes.Effect, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		p.width = ws.Width
		p.height = ws.Height
		p.resize()
		return p, nil, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, nil
	}

	// Delete confirmation modal swallows all keys while open.
	if p.confirmID != "" {
		switch key.String() {
		case "tab", "left", "right":
			if p.confirmFocus == confirmFocusConfirm {
				p.confirmFocus = confirmFocusCancel
			} else {
				p.confirmFocus = confirmFocusConfirm
			}
			return p, nil, nil
		case "enter":
			id := p.confirmID
			p.confirmID = ""
			p.confirmTitle = ""
			if p.confirmFocus == confirmFocusConfirm {
				p2, effs := p.apply(notes.DeleteByID{ID: id})
				return p2, effs, nil
			}
			return p, nil, nil
		case "esc":
			p.confirmID = ""
			p.confirmTitle = ""
			return p, nil, nil
		}
		return p, nil, nil
	}

	if p.st.ComposerOpen {
		switch key.String() {
		case "esc":
			// Close without clearing: drafts stay for the next attempt.
			p2, effs := p.apply(notes.ToggleComposer{})
			return p2, effs, nil
		case "tab", "shift+tab":
			p.composerFocus = 1 - p.composerFocus
			if p.composerFocus == 0 {
				p.title.Focus()
				p.content.Blur()
			} else {
				p.title.Blur()
				p.content.Focus()
			}
			return p, nil, nil
		case "ctrl+s":
			p2, effs := p.apply(notes.SubmitCreate{})
			return p2, effs, nil
		}

		var cmd tea.Cmd
		if p.composerFocus == 0 {
			p.title, cmd = p.title.Update(msg)
			p2, effs := p.apply(notes.SetDraftTitle{Value: p.title.Value()})
			return p2, effs, cmd
		}
		p.content, cmd = p.content.Update(msg)
		p2, effs := p.apply(notes.SetDraftContent{Value: p.content.Value()})
		return p2, effs, cmd
	}

	switch key.String() {
	case "n", "c":
		p2, effs := p.apply(notes.ToggleComposer{})
		return p2, effs, nil
	case "r":
		p2, effs := p.apply(notes.Reload{})
		return p2, effs, nil
	case "d", "backspace":
		if it, ok := p.noteList.SelectedItem().(noteItem); ok {
			p.confirmID = it.note.ID
			p.confirmTitle = it.note.Title
			p.confirmFocus = confirmFocusCancel
		}
		return p, nil, nil
	case "s":
		p2, effs := p.apply(notes.SignOutRequested{})
		return p2, effs, nil
	}

	var cmd tea.Cmd
	p.noteList, cmd = p.noteList.Update(msg)
	return p, nil, cmd
}

func (p *notesPage) resize() {
	h := p.height - 7
	if h < 8 {
		h = 8
	}
	w := p.width / 2
	if w < 30 {
		w = 30
	}
	p.noteList.SetSize(w, h)

	cw := p.width - 8
	if cw > 72 {
		cw = 72
	}
	if cw < 24 {
		cw = 24
	}
	p.title.Width = cw - 4
	p.content.SetWidth(cw)
}

func (p notesPage) view() string {
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("HD Notes   Welcome, %s!", p.identity.DisplayName()),
	) + "  " + styleMuted().Render(p.identity.Email)

	var errLine string
	if p.st.Err != "" {
		errLine = styleError().Render(p.st.Err)
	}

	var body string
	switch {
	case p.confirmID != "":
		modal := renderConfirmModal(
			p.width,
			"Delete note",
			fmt.Sprintf("Delete %q? This cannot be undone.", p.confirmTitle),
			"Delete", "Cancel",
			p.confirmFocus,
		)
		body = placeCentered(p.width, p.bodyHeight(), modal)
	case p.st.ComposerOpen:
		body = p.viewComposer()
	default:
		body = p.viewSplit()
	}

	footer := styleMuted().Render(p.footerHelp())

	parts := []string{header}
	if errLine != "" {
		parts = append(parts, errLine)
	}
	parts = append(parts, body, footer)
	return strings.Join(parts, "\n\n")
}

func (p notesPage) bodyHeight() int {
	h := p.height - 7
	if h < 8 {
		h = 8
	}
	return h
}

func (p notesPage) footerHelp() string {
	if p.confirmID != "" {
		return "tab: focus   enter: select   esc: cancel"
	}
	if p.st.ComposerOpen {
		save := "ctrl+s: add note"
		if p.st.Busy {
			save = "saving…"
		}
		return save + "   tab: switch field   esc: close"
	}
	return "n: new note   d: delete   r: reload   s: sign out   q: quit"
}

func (p notesPage) viewComposer() string {
	cw := p.content.Width()
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("New note"))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("Title"))
	b.WriteString("\n")
	b.WriteString(renderInputLine(cw, p.title.View()))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("Content"))
	b.WriteString("\n")
	b.WriteString(p.content.View())
	return b.String()
}

func (p notesPage) viewSplit() string {
	h := p.bodyHeight()
	leftW := p.width / 2
	if leftW < 30 {
		leftW = 30
	}
	rightW := p.width - leftW - 2
	if rightW < 24 {
		rightW = 24
	}

	left := normalizePane(p.noteList.View(), leftW, h)

	var detail string
	if it, ok := p.noteList.SelectedItem().(noteItem); ok {
		n := it.note
		detail = lipgloss.NewStyle().Bold(true).Render(n.Title) + "\n" +
			styleMuted().Render(n.CreatedAt.Local().Format("2006-01-02 15:04")) + "\n\n" +
			renderMarkdown(n.Content, rightW-2)
	} else {
		detail = styleMuted().Render("No notes yet. Press n to create one.")
	}
	right := normalizePane(detail, rightW, h)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}
