package tui

import (
	"context"
	"strings"
	"time"

	"docchat/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenLogin screen = iota
	screenMain
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusDocs
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewConv
	promptRename
	promptUpload
)

type (
	initialDataMsg struct{ data app.InitialData }
	settledMsg     struct{ err error }
	sendDoneMsg    struct{ err error }
	tickMsg        struct{}
	spinMsg        struct{}
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type Model struct {
	app   *app.Application
	theme Theme
	help  helpModel

	screen screen
	login  loginModel

	width  int
	height int
	ready  bool

	focus      focusArea
	input      textarea.Model
	chatVP     viewport.Model
	sidebarSel int
	docSel     int

	prompt     textinput.Model
	promptKind promptKind

	showHelp   bool
	sending    bool
	loading    bool
	spinnerPos int
	errText    string
}

func New(application *app.Application) *Model {
	theme := NewTheme(application.Config.Theme)

	ta := textarea.New()
	ta.Placeholder = "Ask about your documents…"
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	prompt := textinput.New()
	prompt.CharLimit = 256
	prompt.Prompt = "› "

	first := screenLogin
	if application.Session.IsAuthenticated() {
		first = screenMain
	}

	return &Model{
		app:    application,
		theme:  theme,
		help:   newHelpModel(theme),
		screen: first,
		login:  newLoginModel(application, theme),
		width:  100,
		height: 30,
		focus:  focusInput,
		input:  ta,
		prompt: prompt,
	}
}

func (m *Model) Init() tea.Cmd {
	if m.screen == screenMain {
		m.loading = true
		return tea.Batch(textarea.Blink, m.loadInitialCmd(), m.tick(), m.spinTick())
	}
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(m.width)
		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.chatW, layout.chatH)
			m.ready = true
		} else {
			m.chatVP.Width = layout.chatW
			m.chatVP.Height = layout.chatH
		}
		m.input.SetWidth(max(10, layout.inputW))
		m.prompt.Width = max(10, layout.inputW)
		m.refreshChatViewport()
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, defaultKeyMap().Quit) {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		return m.updateMainKey(msg)

	case authDoneMsg:
		if m.screen == screenLogin {
			if msg.err == nil {
				m.screen = screenMain
				m.loading = true
				return m, tea.Batch(m.loadInitialCmd(), m.tick(), m.spinTick(), textarea.Blink)
			}
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		return m, nil

	case initialDataMsg:
		m.loading = false
		if !msg.data.Authenticated {
			m.screen = screenLogin
			m.login = newLoginModel(m.app, m.theme)
			return m, textinput.Blink
		}
		if msg.data.Err != nil {
			m.errText = msg.data.Err.Error()
		}
		m.refreshChatViewport()
		m.chatVP.GotoBottom()
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.refreshChatViewport()
		m.chatVP.GotoBottom()
		return m, nil

	case settledMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.clampSelections()
		m.refreshChatViewport()
		return m, nil

	case tickMsg:
		if m.screen != screenMain {
			return m, nil
		}
		// The poller settles status in the background; a periodic repaint
		// keeps the panes in step with the stores.
		if !m.app.Session.IsAuthenticated() {
			m.screen = screenLogin
			m.login = newLoginModel(m.app, m.theme)
			return m, textinput.Blink
		}
		m.clampSelections()
		m.refreshChatViewport()
		return m, m.tick()

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.sending || m.loading || m.app.Chat.Typing() {
			return m, m.spinTick()
		}
		return m, nil
	}

	if m.screen == screenLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.promptKind != promptNone {
		m.prompt, cmd = m.prompt.Update(msg)
		cmds = append(cmds, cmd)
	} else if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) updateMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.help.keys

	if m.promptKind != promptNone {
		switch msg.Type {
		case tea.KeyEsc:
			m.promptKind = promptNone
			m.prompt.Reset()
			return m, nil
		case tea.KeyEnter:
			return m.submitPrompt()
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Help) && m.focus != focusInput:
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.FocusNext):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, keys.Logout):
		m.app.Poller.Stop()
		m.app.Auth.Logout()
		m.screen = screenLogin
		m.login = newLoginModel(m.app, m.theme)
		return m, textinput.Blink

	case key.Matches(msg, keys.NewConv):
		m.openPrompt(promptNewConv, "conversation name (empty for default)")
		return m, textinput.Blink

	case key.Matches(msg, keys.RenameConv):
		if m.app.Chat.CurrentID() == "" {
			return m, nil
		}
		m.openPrompt(promptRename, "new name")
		return m, textinput.Blink

	case key.Matches(msg, keys.DeleteConv):
		id := m.app.Chat.CurrentID()
		if id == "" {
			return m, nil
		}
		return m, m.deleteConvCmd(id)

	case key.Matches(msg, keys.Upload):
		m.openPrompt(promptUpload, "file paths, space separated")
		return m, textinput.Blink

	case key.Matches(msg, keys.Process):
		return m, m.processCmd()

	case key.Matches(msg, keys.DeleteDoc):
		docs := m.app.Docs.Documents()
		if m.docSel >= len(docs) {
			return m, nil
		}
		return m, m.deleteDocCmd(docs[m.docSel].Key)

	case key.Matches(msg, keys.Enter):
		switch m.focus {
		case focusSidebar:
			convs := m.app.Chat.Conversations()
			if m.sidebarSel < len(convs) {
				return m, m.selectCmd(convs[m.sidebarSel].ConvID)
			}
			return m, nil
		case focusInput:
			return m, m.onSend()
		}
		return m, nil

	case msg.Type == tea.KeyUp:
		switch m.focus {
		case focusSidebar:
			m.moveSidebar(-1)
			return m, nil
		case focusDocs:
			m.moveDocSel(-1)
			return m, nil
		}
	case msg.Type == tea.KeyDown:
		switch m.focus {
		case focusSidebar:
			m.moveSidebar(1)
			return m, nil
		case focusDocs:
			m.moveDocSel(1)
			return m, nil
		}
	case msg.Type == tea.KeyPgUp:
		m.chatVP.ViewUp()
		return m, nil
	case msg.Type == tea.KeyPgDown:
		m.chatVP.ViewDown()
		return m, nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) onSend() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.sending {
		return nil
	}
	if m.app.Chat.CurrentID() == "" {
		m.errText = "no conversation selected (ctrl+n to start one)"
		return nil
	}
	m.input.Reset()
	m.sending = true
	m.errText = ""
	m.refreshChatViewport()
	m.chatVP.GotoBottom()
	return tea.Batch(m.sendCmd(text), m.spinTick())
}

func (m *Model) openPrompt(kind promptKind, placeholder string) {
	m.promptKind = kind
	m.prompt.Placeholder = placeholder
	m.prompt.Reset()
	m.prompt.Focus()
}

func (m *Model) submitPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.prompt.Value())
	kind := m.promptKind
	m.promptKind = promptNone
	m.prompt.Reset()

	switch kind {
	case promptNewConv:
		return m, m.createCmd(value)
	case promptRename:
		if value == "" {
			return m, nil
		}
		return m, m.renameCmd(m.app.Chat.CurrentID(), value)
	case promptUpload:
		paths := strings.Fields(value)
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.uploadCmd(paths)
	}
	return m, nil
}

func (m *Model) cycleFocus() {
	m.input.Blur()
	switch m.focus {
	case focusInput:
		m.focus = focusSidebar
	case focusSidebar:
		m.focus = focusDocs
	default:
		m.focus = focusInput
		m.input.Focus()
	}
}

func (m *Model) moveSidebar(delta int) {
	n := len(m.app.Chat.Conversations())
	if n == 0 {
		m.sidebarSel = 0
		return
	}
	m.sidebarSel = (m.sidebarSel + delta + n) % n
}

func (m *Model) moveDocSel(delta int) {
	n := len(m.app.Docs.Documents())
	if n == 0 {
		m.docSel = 0
		return
	}
	m.docSel = (m.docSel + delta + n) % n
}

func (m *Model) clampSelections() {
	if n := len(m.app.Chat.Conversations()); m.sidebarSel >= n {
		m.sidebarSel = max(0, n-1)
	}
	if n := len(m.app.Docs.Documents()); m.docSel >= n {
		m.docSel = max(0, n-1)
	}
}

// Commands. Every store mutation happens inside the sync layer; the TUI
// only schedules work and repaints when it settles.

func (m *Model) loadInitialCmd() tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*application.Config.RequestTimeout())
		defer cancel()
		return initialDataMsg{data: application.LoadInitialData(ctx)}
	}
}

func (m *Model) sendCmd(text string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		// Answer generation can outlive a single request timeout budget.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return sendDoneMsg{err: application.ChatSync.Send(ctx, text)}
	}
}

func (m *Model) selectCmd(convID string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		application.ChatSync.Select(ctx, convID)
		return settledMsg{}
	}
}

func (m *Model) createCmd(name string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		_, err := application.ChatSync.Create(ctx, name)
		if err == nil {
			err = application.ChatSync.RefreshConversations(ctx)
		}
		return settledMsg{err: err}
	}
}

func (m *Model) renameCmd(convID, name string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		err := application.ChatSync.Rename(ctx, convID, name)
		if refreshErr := application.ChatSync.RefreshConversations(ctx); err == nil {
			err = refreshErr
		}
		return settledMsg{err: err}
	}
}

func (m *Model) deleteConvCmd(convID string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		err := application.ChatSync.Delete(ctx, convID)
		if refreshErr := application.ChatSync.RefreshConversations(ctx); err == nil {
			err = refreshErr
		}
		return settledMsg{err: err}
	}
}

func (m *Model) uploadCmd(paths []string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		err := application.DocSync.Upload(ctx, paths...)
		if err == nil {
			err = application.DocSync.RefreshDocuments(ctx)
		}
		if err == nil {
			err = application.DocSync.RefreshStatus(ctx)
		}
		return settledMsg{err: err}
	}
}

func (m *Model) processCmd() tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		err := application.DocSync.Process(ctx)
		if err == nil {
			err = application.DocSync.RefreshStatus(ctx)
		}
		return settledMsg{err: err}
	}
}

func (m *Model) deleteDocCmd(key string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()
		err := application.DocSync.Delete(ctx, key)
		if err == nil {
			err = application.DocSync.RefreshDocuments(ctx)
		}
		return settledMsg{err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) spinTick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}
