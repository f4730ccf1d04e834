package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

// UI configuration constants
const (
	defaultInputWidth     = 100
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	defaultWindowWidth    = 100
	defaultWindowHeight   = 40
	inputCharLimit        = 4000
	inputHeightReserved   = 2
	statusHeightReserved  = 3
	minContentHeight      = 10
	threadIDDisplayLength = 8
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	imageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
)

// Backend is the part of the API client the chat screen needs
type Backend interface {
	ChatStreaming(ctx context.Context, req types.ChatRequest) (<-chan types.StreamEvent, <-chan error, error)
	Upload(ctx context.Context, name string, r io.Reader) (*types.UploadResult, error)
}

// streamState represents the state of streaming response
type streamState int

const (
	streamIdle streamState = iota
	streamStreaming
	streamUploading
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a chat screen. threadID may be empty.
func NewChatProgram(backend Backend, threadID string) *ChatProgram {
	return &ChatProgram{model: initialModel(backend, threadID)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	backend  Backend
	threadID string

	input       textinput.Model
	contentView viewport.Model

	// The server keeps no conversation state, every request carries the
	// whole history.
	history []types.ChatMessage
	pending []types.Attachment

	state   streamState
	content *strings.Builder // Use pointer to avoid Builder copy
	reply   *strings.Builder
	cancel  context.CancelFunc

	eventCh <-chan types.StreamEvent
	errCh   <-chan error

	err error

	width  int
	height int
}

func initialModel(backend Backend, threadID string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about your data, or /attach <file>"
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	return chatModel{
		backend:     backend,
		threadID:    threadID,
		input:       input,
		contentView: contentViewport,
		state:       streamIdle,
		content:     &strings.Builder{},
		reply:       &strings.Builder{},
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

type (
	streamInitMsg struct {
		eventCh <-chan types.StreamEvent
		errCh   <-chan error
	}
	streamEventMsg struct{ event types.StreamEvent }
	streamErrMsg   struct{ err error }
	streamDoneMsg  struct{}
	uploadDoneMsg  struct {
		name   string
		result *types.UploadResult
		err    error
	}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case streamInitMsg:
		m.eventCh = msg.eventCh
		m.errCh = msg.errCh
		cmds = append(cmds, waitForEvent(m.eventCh, m.errCh))

	case streamEventMsg:
		if m.handleEvent(msg.event) {
			cmds = append(cmds, waitForEvent(m.eventCh, m.errCh))
		}

	case streamErrMsg:
		m.failStream(msg.err)

	case streamDoneMsg:
		if m.state == streamStreaming {
			// Stream ended without a terminal event
			m.failStream(fmt.Errorf("stream ended unexpectedly"))
		}

	case uploadDoneMsg:
		m.handleUpload(msg)
	}

	if m.state == streamIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.cancel != nil {
			m.cancel()
		}
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != streamIdle {
			break
		}
		text := strings.TrimSpace(m.input.Value())
		switch {
		case text == "":
		case strings.HasPrefix(text, "/attach "):
			m.input.Reset()
			path := strings.TrimSpace(strings.TrimPrefix(text, "/attach "))
			m.state = streamUploading
			cmds = append(cmds, m.upload(path))
		case text == "/clear":
			m.input.Reset()
			m.history, m.pending, m.err = nil, nil, nil
			m.content.Reset()
			m.refreshContent()
		default:
			cmds = append(cmds, m.send(text))
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	m.refreshContent()
}

// send appends the user turn (with pending attachments) and starts a stream
func (m *chatModel) send(text string) tea.Cmd {
	m.input.Reset()
	m.err = nil
	m.reply.Reset()

	msg := types.ChatMessage{Role: "user", Content: text, Attachments: m.pending}
	m.pending = nil
	m.history = append(m.history, msg)

	m.content.WriteString("\n")
	m.content.WriteString(boldStyle.Render("You"))
	m.content.WriteString("\n")
	m.content.WriteString(text)
	for _, a := range msg.Attachments {
		m.content.WriteString("\n")
		m.content.WriteString(dimStyle.Render("📎 " + a.Name))
	}
	m.content.WriteString("\n\n")
	m.content.WriteString(accentStyle.Render("Assistant"))
	m.content.WriteString("\n")

	m.state = streamStreaming
	m.refreshContent()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	req := types.ChatRequest{
		ThreadID: m.threadID,
		Messages: append([]types.ChatMessage(nil), m.history...),
	}
	backend := m.backend
	return func() tea.Msg {
		eventCh, errCh, err := backend.ChatStreaming(ctx, req)
		if err != nil {
			return streamErrMsg{err: err}
		}
		return streamInitMsg{eventCh: eventCh, errCh: errCh}
	}
}

func (m *chatModel) upload(path string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		name := filepath.Base(path)
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{name: name, err: err}
		}
		defer f.Close()
		result, err := backend.Upload(context.Background(), name, f)
		return uploadDoneMsg{name: name, result: result, err: err}
	}
}

func (m *chatModel) handleUpload(msg uploadDoneMsg) {
	m.state = streamIdle
	if msg.err != nil {
		m.err = fmt.Errorf("upload %s: %w", msg.name, msg.err)
		m.refreshContent()
		return
	}
	m.err = nil
	m.pending = append(m.pending, msg.result.Attachment(msg.name))
	m.content.WriteString(dimStyle.Render(fmt.Sprintf("📎 %s attached (%s), sent with your next message", msg.name, msg.result.Type)))
	m.content.WriteString("\n")
	m.refreshContent()
}

func waitForEvent(eventCh <-chan types.StreamEvent, errCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				if err, ok := <-errCh; ok && err != nil {
					return streamErrMsg{err: err}
				}
				return streamDoneMsg{}
			}
			return streamEventMsg{event: ev}
		case err, ok := <-errCh:
			if ok && err != nil {
				return streamErrMsg{err: err}
			}
			// errCh closes together with eventCh; drain the remaining events
			ev, ok := <-eventCh
			if !ok {
				return streamDoneMsg{}
			}
			return streamEventMsg{event: ev}
		}
	}
}

// handleEvent applies one stream event and reports whether more may follow.
func (m *chatModel) handleEvent(ev types.StreamEvent) bool {
	switch ev.Type {
	case types.EventTextDelta:
		m.reply.WriteString(ev.TextDelta)
		m.content.WriteString(ev.TextDelta)
	case types.EventImage:
		m.content.WriteString("\n")
		m.content.WriteString(imageStyle.Render("🖼  " + ev.Image))
		m.content.WriteString("\n")
	case types.EventFinish:
		m.history = append(m.history, types.ChatMessage{Role: "assistant", Content: m.reply.String()})
		m.content.WriteString("\n")
		m.endStream()
		return false
	case types.EventError:
		m.failStream(fmt.Errorf("%s", ev.Error))
		return false
	}
	m.refreshContent()
	return true
}

// failStream drops the unanswered user turn so a retry does not repeat it
func (m *chatModel) failStream(err error) {
	if m.state != streamStreaming {
		return
	}
	m.err = err
	if n := len(m.history); n > 0 && m.history[n-1].Role == "user" {
		m.history = m.history[:n-1]
	}
	m.content.WriteString("\n")
	m.endStream()
}

func (m *chatModel) endStream() {
	m.state = streamIdle
	m.eventCh, m.errCh = nil, nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.refreshContent()
}

func (m *chatModel) refreshContent() {
	display := m.content.String()
	if m.err != nil {
		display += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.width > 0 {
		display = wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

// wrapText applies auto-wrapping to text, correctly handling wide characters
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text by display width
func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	status := dimStyle.Render("new conversation")
	if m.threadID != "" {
		id := m.threadID
		if len(id) > threadIDDisplayLength {
			id = id[:threadIDDisplayLength]
		}
		status = dimStyle.Render("thread " + id)
	}
	if n := len(m.pending); n > 0 {
		status += dimStyle.Render(fmt.Sprintf(" • %d attachment(s) pending", n))
	}
	switch m.state {
	case streamStreaming:
		status += dimStyle.Render(" • generating...")
	case streamUploading:
		status += dimStyle.Render(" • uploading...")
	}

	content := m.contentView.View()

	var inputView string
	if m.state != streamIdle {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	help := ""
	if m.state == streamIdle {
		help = dimStyle.Render("Enter send • /attach <file> • /clear • ↑↓ scroll • Esc quit")
	}

	parts := []string{status, "", content, "", inputView}
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
