package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpModel struct {
	keys  keyMap
	width int
	theme Theme
}

func newHelpModel(theme Theme) helpModel {
	return helpModel{
		keys:  defaultKeyMap(),
		width: 80,
		theme: theme,
	}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View() string {
	var b strings.Builder

	keyStyle := m.theme.TopBarBadge
	descStyle := m.theme.Footer

	b.WriteString(m.theme.TopBarTitle.Render("docchat help"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.PaneTitleF.Render("chat"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  send message\n", keyStyle.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  new conversation\n", keyStyle.Render("ctrl+n")))
	b.WriteString(fmt.Sprintf("  %s  rename conversation\n", keyStyle.Render("ctrl+r")))
	b.WriteString(fmt.Sprintf("  %s  delete conversation\n", keyStyle.Render("ctrl+d")))
	b.WriteString(fmt.Sprintf("  %s  move between panes\n", keyStyle.Render("tab")))
	b.WriteString("\n")

	b.WriteString(m.theme.PaneTitleF.Render("documents"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  upload documents\n", keyStyle.Render("ctrl+u")))
	b.WriteString(fmt.Sprintf("  %s  process documents\n", keyStyle.Render("ctrl+p")))
	b.WriteString(fmt.Sprintf("  %s  delete selected document\n", keyStyle.Render("ctrl+x")))
	b.WriteString("\n")

	b.WriteString(m.theme.PaneTitleF.Render("session"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  ctrl+l  log out"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("  ctrl+c  quit"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.Footer.Render("? toggles this help"))
	return b.String()
}

type keyMap struct {
	Quit       key.Binding
	Enter      key.Binding
	FocusNext  key.Binding
	Help       key.Binding
	NewConv    key.Binding
	RenameConv key.Binding
	DeleteConv key.Binding
	Upload     key.Binding
	Process    key.Binding
	DeleteDoc  key.Binding
	Logout     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		NewConv: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new conversation"),
		),
		RenameConv: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rename conversation"),
		),
		DeleteConv: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete conversation"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "upload documents"),
		),
		Process: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "process documents"),
		),
		DeleteDoc: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete document"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.NewConv, k.Upload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.NewConv, k.RenameConv, k.DeleteConv},
		{k.Upload, k.Process, k.DeleteDoc, k.Logout, k.Quit},
	}
}
