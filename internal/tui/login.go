package tui

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/app"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

type authDoneMsg struct{ err error }

type loginModel struct {
	app   *app.Application
	theme Theme

	mode       authMode
	inputs     []textinput.Model
	focusIndex int
	submitting bool
	errText    string
	width      int
}

func newLoginModel(application *app.Application, theme Theme) loginModel {
	m := loginModel{app: application, theme: theme, mode: authLogin, width: 80}
	m.rebuildInputs()
	return m
}

func (m *loginModel) rebuildInputs() {
	labels := []string{"email", "password"}
	if m.mode == authRegister {
		labels = []string{"username", "email", "password"}
	}

	m.inputs = make([]textinput.Model, len(labels))
	for i, label := range labels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.CharLimit = 128
		ti.Prompt = "› "
		if label == "password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.inputs[i] = ti
	}
	m.focusIndex = 0
	m.inputs[0].Focus()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case msg.Type == tea.KeyTab, msg.Type == tea.KeyDown:
			m.moveFocus(1)
			return m, nil
		case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
			m.moveFocus(-1)
			return m, nil
		case msg.Type == tea.KeyEnter:
			if m.focusIndex < len(m.inputs)-1 {
				m.moveFocus(1)
				return m, nil
			}
			return m.submit()
		case msg.String() == "ctrl+t":
			if m.mode == authLogin {
				m.mode = authRegister
			} else {
				m.mode = authLogin
			}
			m.errText = ""
			m.rebuildInputs()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *loginModel) moveFocus(delta int) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = (m.focusIndex + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIndex].Focus()
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	values := make([]string, len(m.inputs))
	for i := range m.inputs {
		values[i] = strings.TrimSpace(m.inputs[i].Value())
		if values[i] == "" {
			m.errText = "all fields are required"
			return m, nil
		}
	}

	m.submitting = true
	m.errText = ""
	application := m.app
	mode := m.mode
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.RequestTimeout())
		defer cancel()

		var err error
		if mode == authRegister {
			err = application.Auth.Register(ctx, values[0], values[1], values[2])
		} else {
			err = application.Auth.Login(ctx, values[0], values[1])
		}
		return authDoneMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	title := "sign in"
	hint := "ctrl+t to create an account"
	if m.mode == authRegister {
		title = "create account"
		hint = "ctrl+t to sign in instead"
	}

	b.WriteString(m.theme.TopBarTitle.Render("docchat"))
	b.WriteString("  ")
	b.WriteString(m.theme.TopBarMeta.Render(title))
	b.WriteString("\n\n")

	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	if m.submitting {
		b.WriteString("\n")
		b.WriteString(m.theme.Footer.Render("signing in…"))
	} else if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.RoleErr.Render(fmt.Sprintf("✗ %s", m.errText)))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.Footer.Render(hint + " · enter to submit · ctrl+c to quit"))

	box := m.theme.Pane.Width(min(m.width-4, 60))
	return lipgloss.NewStyle().Padding(1, 2).Render(box.Render(b.String()))
}
