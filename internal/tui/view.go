package tui

import (
	"fmt"
	"strings"

	"docchat/internal/app"

	"github.com/charmbracelet/lipgloss"
)

type layout struct {
	sidebarW int
	chatW    int
	docsW    int
	chatH    int
	inputW   int
}

func (m *Model) computeLayout() layout {
	l := layout{}
	l.sidebarW = clamp(m.width/5, 18, 32)
	l.docsW = clamp(m.width/4, 22, 38)
	if m.width < 90 {
		// Narrow terminals drop the documents pane; status stays in the bar.
		l.docsW = 0
	}
	l.chatW = m.width - l.sidebarW - l.docsW - 10
	if l.chatW < 20 {
		l.chatW = 20
	}
	l.chatH = m.height - 8
	if l.chatH < 5 {
		l.chatH = 5
	}
	l.inputW = m.width - 6
	return l
}

func (m *Model) View() string {
	if m.screen == screenLogin {
		return m.login.View()
	}
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.help.View())
	}

	l := m.computeLayout()
	top := m.renderTopBar()
	row := m.renderMainRow(l)
	input := m.renderInputArea(l)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, row, input, footer)
}

func (m *Model) renderTopBar() string {
	title := m.theme.TopBarTitle.Render("docchat")

	who := ""
	if user := m.app.Session.User(); user != nil {
		name := user.Username
		if name == "" {
			name = user.Email
		}
		who = m.theme.TopBarMeta.Render(name)
	}

	status := m.renderStatusBadge()

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", who)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + status
}

func (m *Model) renderStatusBadge() string {
	if m.loading {
		return m.theme.Spinner.Render(spinnerFrames[m.spinnerPos] + " loading")
	}

	status := m.app.Docs.DisplayStatus()
	label := statusLabel(status)
	switch status {
	case app.StatusProcessing:
		return m.theme.StatusWorking.Render(spinnerFrames[m.spinnerPos] + " " + label)
	case app.StatusError:
		return m.theme.StatusError.Render("✗ " + label)
	case app.StatusWaiting:
		return m.theme.StatusWorking.Render("● " + label)
	case app.StatusProcessed:
		return m.theme.StatusOK.Render("✓ " + label)
	default:
		return m.theme.TopBarMeta.Render(label)
	}
}

func (m *Model) renderMainRow(l layout) string {
	sidebar := m.renderSidebar(l)
	chat := m.paneStyle(false).Width(l.chatW).Height(l.chatH).Render(m.chatVP.View())
	parts := []string{sidebar, chat}
	if l.docsW > 0 {
		parts = append(parts, m.renderDocsPane(l))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) paneStyle(focused bool) lipgloss.Style {
	if focused {
		return m.theme.PaneFocused
	}
	return m.theme.Pane
}

func (m *Model) renderSidebar(l layout) string {
	var b strings.Builder
	titleStyle := m.theme.PaneTitle
	if m.focus == focusSidebar {
		titleStyle = m.theme.PaneTitleF
	}
	b.WriteString(titleStyle.Render("conversations"))
	b.WriteString("\n")

	convs := m.app.Chat.Conversations()
	currentID := m.app.Chat.CurrentID()
	if len(convs) == 0 {
		b.WriteString(m.theme.Footer.Render("none yet"))
	}
	for i, conv := range convs {
		if i >= l.chatH-2 {
			b.WriteString(m.theme.Footer.Render(fmt.Sprintf("… %d more", len(convs)-i)))
			break
		}
		name := truncate(conversationLabel(conv), l.sidebarW-4)
		marker := "  "
		style := m.theme.ListItem
		if conv.ConvID == currentID {
			marker = "● "
			style = m.theme.ListItemSel
		}
		if m.focus == focusSidebar && i == m.sidebarSel {
			marker = "> "
			style = m.theme.ListItemSel
		}
		b.WriteString(style.Render(marker + name))
		b.WriteString("\n")
	}
	return m.paneStyle(m.focus == focusSidebar).Width(l.sidebarW).Height(l.chatH).Render(b.String())
}

func (m *Model) renderDocsPane(l layout) string {
	var b strings.Builder
	titleStyle := m.theme.PaneTitle
	if m.focus == focusDocs {
		titleStyle = m.theme.PaneTitleF
	}
	b.WriteString(titleStyle.Render("documents"))
	b.WriteString("\n")

	docs := m.app.Docs.Documents()
	if len(docs) == 0 {
		b.WriteString(m.theme.Footer.Render("no documents (ctrl+u to upload)"))
	}
	for i, doc := range docs {
		if i >= l.chatH-2 {
			b.WriteString(m.theme.Footer.Render(fmt.Sprintf("… %d more", len(docs)-i)))
			break
		}
		marker := "  "
		style := m.theme.ListItem
		if m.focus == focusDocs && i == m.docSel {
			marker = "> "
			style = m.theme.ListItemSel
		}
		line := fmt.Sprintf("%s%s %s", marker, truncate(doc.Name, l.docsW-12), formatSize(doc.Size))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return m.paneStyle(m.focus == focusDocs).Width(l.docsW).Height(l.chatH).Render(b.String())
}

func (m *Model) renderInputArea(l layout) string {
	if m.promptKind != promptNone {
		return m.theme.InputBoxF.Width(l.inputW).Render(m.prompt.View())
	}
	style := m.theme.InputBox
	if m.focus == focusInput {
		style = m.theme.InputBoxF
	}
	return style.Width(l.inputW).Render(m.input.View())
}

func (m *Model) renderFooter() string {
	if m.errText != "" {
		return " " + m.theme.RoleErr.Render("✗ "+truncate(m.errText, m.width-4))
	}
	if m.app.Chat.Typing() {
		return " " + m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]+" assistant is typing…")
	}
	parts := make([]string, 0, 6)
	for _, binding := range m.help.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return " " + m.theme.Footer.Render(strings.Join(parts, " · "))
}

// refreshChatViewport re-renders the current conversation into the viewport
// from a fresh store snapshot.
func (m *Model) refreshChatViewport() {
	if !m.ready {
		return
	}
	l := m.computeLayout()

	conv, ok := m.app.Chat.Current()
	if !ok {
		m.chatVP.SetContent(m.theme.Footer.Render("No conversation selected. ctrl+n starts one."))
		return
	}

	var b strings.Builder
	b.WriteString(m.theme.PaneTitleF.Render(conversationLabel(conv)))
	b.WriteString("\n\n")
	for _, msg := range conv.Messages {
		b.WriteString(m.renderMessage(msg, l.chatW-4))
		b.WriteString("\n")
	}
	m.chatVP.SetContent(b.String())
}

func (m *Model) renderMessage(msg app.Message, width int) string {
	role := m.theme.RoleBot.Render("assistant")
	if msg.Sender == app.SenderUser {
		role = m.theme.RoleYou.Render("you")
	}
	stamp := m.theme.Footer.Render(msg.Timestamp.Format("15:04"))
	header := role + " " + stamp

	content := normalizeContent(msg.Content)
	body := lipgloss.NewStyle().Width(max(10, width)).Render(content)
	return header + "\n" + body + "\n"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
