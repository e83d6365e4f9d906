// Package tui implements the interactive chat surface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
)

// Sender produces a reply for one user message. The assistant
// satisfies this.
type Sender interface {
	HandleMessage(ctx context.Context, sessionID, tenantID, userRef, text string) (string, error)
}

// Theme holds the chat color scheme.
type Theme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
}

var defaultTheme = Theme{
	User:      lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t Theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

type chatTurn struct {
	role string // "user" or "assistant"
	text string
	err  bool
}

// replyMsg carries the assistant's answer back into the update loop.
type replyMsg struct {
	text string
	err  error
}

type chatModel struct {
	sender    Sender
	sessionID string
	tenantID  string
	userName  string

	input   textinput.Model
	spinner spinner.Model
	theme   Theme

	turns   []chatTurn
	waiting bool
	width   int
	height  int
}

func newChatModel(sender Sender, sessionID, tenantID, userName string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your team, or log an interaction (Ctrl+C to quit)"
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		sender:    sender,
		sessionID: sessionID,
		tenantID:  tenantID,
		userName:  userName,
		input:     ti,
		spinner:   sp,
		theme:     defaultTheme,
		width:     80,
		height:    24,
	}
}

func (m chatModel) Init() tea.Cmd {
	return nil
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.turns = append(m.turns, chatTurn{role: "user", text: text})
			m.input.SetValue("")
			m.waiting = true
			return m, tea.Batch(m.send(text), m.spinner.Tick)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.turns = append(m.turns, chatTurn{role: "assistant", text: msg.err.Error(), err: true})
		} else {
			m.turns = append(m.turns, chatTurn{role: "assistant", text: msg.text})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send runs the assistant call off the update loop.
func (m chatModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := m.sender.HandleMessage(ctx, m.sessionID, m.tenantID, m.userName, text)
		return replyMsg{text: reply, err: err}
	}
}

func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	b.WriteString(m.theme.assistantStyle().Render("Shepherd"))
	b.WriteString(m.theme.hintStyle().Render("  team-care assistant"))
	b.WriteString("\n\n")

	for _, turn := range m.visibleTurns() {
		switch {
		case turn.role == "user":
			b.WriteString(m.theme.userStyle().Render(m.userName+":") + " " + turn.text + "\n")
		case turn.err:
			b.WriteString(m.theme.errorStyle().Render("error: "+turn.text) + "\n")
		default:
			b.WriteString(m.theme.assistantStyle().Render("Shepherd:") + " " + wrap(turn.text, m.width) + "\n")
		}
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + m.theme.hintStyle().Render(" thinking...") + "\n\n")
	}

	b.WriteString(m.input.View())
	return b.String()
}

// visibleTurns trims the transcript to roughly what fits on screen.
func (m chatModel) visibleTurns() []chatTurn {
	budget := m.height - 6
	if budget < 2 {
		budget = 2
	}
	used := 0
	start := len(m.turns)
	for start > 0 {
		cost := strings.Count(m.turns[start-1].text, "\n") + 2
		if used+cost > budget {
			break
		}
		used += cost
		start--
	}
	return m.turns[start:]
}

// wrap folds long lines at word boundaries so replies stay readable in
// narrow terminals.
func wrap(text string, width int) string {
	if width <= 20 {
		return text
	}
	limit := width - 10
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			cut := strings.LastIndex(line[:limit], " ")
			if cut <= 0 {
				cut = limit
			}
			out = append(out, line[:cut])
			line = strings.TrimSpace(line[cut:])
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Run starts the interactive chat and blocks until the user quits.
func Run(sender Sender, sessionID, tenantID, userName string) error {
	program := tea.NewProgram(newChatModel(sender, sessionID, tenantID, userName))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}
