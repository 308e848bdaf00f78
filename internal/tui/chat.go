// Package tui is the terminal chat front-end. It owns the per-session
// conversation state and dispatches each question to the pipeline on a
// tea.Cmd so a slow generation never freezes the interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vivi/internal/domain"
)

// Answerer is the TUI-facing subset of the pipeline.
type Answerer interface {
	Answer(ctx context.Context, conv *domain.Conversation, question string) (string, error)
}

// answerMsg signals a finished pipeline call; the exchange itself is already
// appended to the conversation by the pipeline.
type answerMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	pipeline Answerer
	conv     *domain.Conversation
	input    textinput.Model
	viewport viewport.Model
	status   string
	waiting  bool
	ready    bool
}

// New creates a new chat model instance.
func New(pipeline Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Digite sua pergunta e pressione Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		conv:     &domain.Conversation{},
		input:    ti,
		viewport: vp,
		status:   "Vivi está pronta. Pergunte algo!",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.viewport.SetContent(m.renderConversation())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Vivi está pensando..."
				return m, askCmd(m.pipeline, m.conv, q)
			}
		}
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Desculpe, algo deu errado: " + msg.err.Error()
		} else {
			m.status = "Pronto. Pergunte mais alguma coisa!"
		}
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(pipeline Answerer, conv *domain.Conversation, question string) tea.Cmd {
	return func() tea.Msg {
		_, err := pipeline.Answer(context.Background(), conv, question)
		return answerMsg{err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	header := headerStyle.Render("Chatbot Vivi")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if len(m.conv.Exchanges) == 0 {
		return "Nenhuma conversa ainda."
	}
	var b strings.Builder
	for i, ex := range m.conv.Exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("Você: ") + ex.Question)
		b.WriteString("\n")
		b.WriteString(viviStyle.Render("Vivi: ") + ex.Answer)
	}
	return b.String()
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	viviStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
