// Package tui renders the interactive chat and match panel.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easeaico/kindred/internal/matcher"
	"github.com/easeaico/kindred/internal/orchestrator"
	"github.com/easeaico/kindred/internal/types"
)

// ChatPort is the TUI-facing subset of the orchestrator.
type ChatPort interface {
	SendMessage(ctx context.Context, text string) (*orchestrator.SendResult, error)
	CurrentChat() orchestrator.Snapshot
	StartNewChat() string
	SetMatchFoundHook(hook func([]types.MatchCandidate))
	MatcherStats() matcher.Stats
}

// matchBuffer collects match notifications emitted inside SendMessage so the
// update loop can pick them up after the command finishes.
type matchBuffer struct {
	mu     sync.Mutex
	latest []types.MatchCandidate
}

func (b *matchBuffer) put(matches []types.MatchCandidate) {
	b.mu.Lock()
	b.latest = matches
	b.mu.Unlock()
}

func (b *matchBuffer) take() []types.MatchCandidate {
	b.mu.Lock()
	defer b.mu.Unlock()
	matches := b.latest
	b.latest = nil
	return matches
}

type sendDoneMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	chat    ChatPort
	input   textinput.Model
	view    viewport.Model
	buffer  *matchBuffer
	matches []types.MatchCandidate
	status  string
	sending bool
	ready   bool
}

// New creates the TUI model and registers the match hook.
func New(chat ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	buffer := &matchBuffer{}
	chat.SetMatchFoundHook(buffer.put)

	stats := chat.MatcherStats()
	return Model{
		chat:   chat,
		input:  ti,
		view:   vp,
		buffer: buffer,
		status: fmt.Sprintf("Corpus: %d chats, %d topics. Say hello to find your match.", stats.TotalChats, stats.UniqueTopics),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and send-completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 + matchPanelHeight // header, input frame, status, matches
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.view.Width = maxInt(20, msg.Width-chatBoxStyle.GetHorizontalFrameSize())
		m.view.Height = vh
		m.view.SetContent(m.renderConversation())
		m.view.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending {
				return m, nil
			}
			m.sending = true
			m.status = "Thinking..."
			m.input.SetValue("")
			chat := m.chat
			return m, func() tea.Msg {
				_, err := chat.SendMessage(context.Background(), text)
				return sendDoneMsg{err: err}
			}
		case "ctrl+n":
			m.chat.StartNewChat()
			m.matches = nil
			m.status = "Started a new chat."
			m.view.SetContent(m.renderConversation())
			return m, nil
		}

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else if found := m.buffer.take(); len(found) > 0 {
			m.matches = found
			m.status = fmt.Sprintf("Found %d matching conversations!", len(found))
		} else {
			m.status = "No matches yet, keep chatting."
		}
		m.view.SetContent(m.renderConversation())
		m.view.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat transcript, match panel, input, and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Kindred — conversation matchmaking")
	chat := chatBoxStyle.Render(m.view.View())
	matches := m.renderMatches()
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + matches + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	snap := m.chat.CurrentChat()
	if len(snap.Messages) == 0 {
		return "No messages yet."
	}
	var sb strings.Builder
	for i, msg := range snap.Messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := youStyle.Render("You")
		if msg.Role == types.RoleAssistant {
			label = assistantStyle.Render("Assistant")
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

func (m Model) renderMatches() string {
	if len(m.matches) == 0 {
		return matchBoxStyle.Render("No matches yet.")
	}
	var lines []string
	for i, match := range m.matches {
		if i >= matchPanelHeight-2 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s — %s", match.ChatID, match.MatchReason))
	}
	return matchBoxStyle.Render(strings.Join(lines, "\n"))
}

const matchPanelHeight = 6

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	matchBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Foreground(lipgloss.Color("12"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	youStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
