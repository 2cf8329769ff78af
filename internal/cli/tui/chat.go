package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lvyanru/venue-chat/internal/cli/ui"
	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/session"
)

// UI configuration constants
const (
	defaultInputWidth      = 100
	defaultViewportWidth   = 100
	defaultViewportHeight  = 30
	defaultWindowWidth     = 100
	defaultWindowHeight    = 40
	inputCharLimit         = 4000
	inputHeightReserved    = 2
	statusHeightReserved   = 3
	minContentHeight       = 10
	sessionIDDisplayLength = 8
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

const helpText = "Enter send • /more more venues • /book N book venue N • /clear new chat • ↑↓ scroll • Esc stop/quit"

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	session *session.Session
	model   chatModel
}

// NewChatProgram creates a chat program over s. markdownStyle is a glamour
// style name or "auto".
func NewChatProgram(ctx context.Context, s *session.Session, markdownStyle string) *ChatProgram {
	return &ChatProgram{
		session: s,
		model:   initialModel(ctx, s, markdownStyle),
	}
}

// Run starts the chat TUI program and blocks until it exits. An in-flight
// turn is cancelled on exit.
func (p *ChatProgram) Run(ctx context.Context) error {
	program := tea.NewProgram(p.model, tea.WithAltScreen(), tea.WithContext(ctx))
	p.session.SetObserver(&programObserver{program: program})
	defer p.session.SetObserver(nil)

	_, err := program.Run()
	p.session.Cancel()
	return err
}

// Messages forwarded from the session observer
type (
	stateMsg     struct{ state session.State }
	progressMsg  struct{ text string }
	appendMsg    struct{ msg domain.Message }
	replaceMsg   struct {
		index int
		msg   domain.Message
	}
	resetMsg     struct{ messages []domain.Message }
	sessionIDMsg struct{ id string }
	turnDoneMsg  struct{ err error }
)

// programObserver forwards session events into the bubbletea event loop
type programObserver struct {
	program *tea.Program
}

func (o *programObserver) StateChanged(state session.State) { o.program.Send(stateMsg{state}) }
func (o *programObserver) Progress(text string)             { o.program.Send(progressMsg{text}) }
func (o *programObserver) MessageAppended(_ int, msg domain.Message) {
	o.program.Send(appendMsg{msg})
}
func (o *programObserver) MessageReplaced(index int, msg domain.Message) {
	o.program.Send(replaceMsg{index: index, msg: msg})
}
func (o *programObserver) HistoryReset(messages []domain.Message) {
	o.program.Send(resetMsg{messages})
}
func (o *programObserver) SessionIDChanged(id string) { o.program.Send(sessionIDMsg{id}) }

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	ctx           context.Context
	session       *session.Session
	renderer      *ui.Renderer
	markdownStyle string

	// UI components
	input       textinput.Model
	contentView viewport.Model
	spinner     spinner.Model

	// Mirror of the session, fed by observer messages
	state     session.State
	sessionID string
	messages  []domain.Message
	rendered  []string
	progress  string

	// Local notice (rejected commands, unexpected errors)
	notice string

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(ctx context.Context, s *session.Session, markdownStyle string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask for a venue, a table or a ride…"
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = accentStyle

	m := chatModel{
		ctx:           ctx,
		session:       s,
		markdownStyle: markdownStyle,
		input:         input,
		contentView:   contentViewport,
		spinner:       spin,
		state:         s.State(),
		sessionID:     s.SessionID(),
		width:         defaultWindowWidth,
		height:        defaultWindowHeight,
	}
	m.renderer = ui.NewRenderer(m.width-2, markdownStyle)
	m.resetMessages(s.Messages())
	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKeyPress(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case stateMsg:
		m.state = msg.state

	case progressMsg:
		m.progress = msg.text
		m.refreshContent()

	case appendMsg:
		m.messages = append(m.messages, msg.msg)
		m.rendered = append(m.rendered, m.renderer.Message(msg.msg))
		m.refreshContent()

	case replaceMsg:
		if msg.index >= 0 && msg.index < len(m.messages) {
			m.messages[msg.index] = msg.msg
			m.rendered[msg.index] = m.renderer.Message(msg.msg)
			m.refreshContent()
		}

	case resetMsg:
		m.resetMessages(msg.messages)

	case sessionIDMsg:
		m.sessionID = msg.id

	case turnDoneMsg:
		m.handleTurnDone(msg.err)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keys the chat owns; the rest go to the input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.session.Cancel()
		return tea.Quit, true

	case tea.KeyEsc:
		if m.state.InFlight() {
			m.session.Cancel()
			return nil, true
		}
		return tea.Quit, true

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return nil, true
		}
		if m.state.Busy() {
			m.setNotice("wait for the reply to finish, or press Esc to stop it")
			return nil, true
		}
		m.input.Reset()
		m.setNotice("")
		return m.submit(text), true

	case tea.KeyUp:
		m.contentView.LineUp(1)
		return nil, true

	case tea.KeyDown:
		m.contentView.LineDown(1)
		return nil, true

	case tea.KeyPgUp:
		m.contentView.ViewUp()
		return nil, true

	case tea.KeyPgDown:
		m.contentView.ViewDown()
		return nil, true
	}
	return nil, false
}

// submit turns input into a session call running off the event loop
func (m *chatModel) submit(text string) tea.Cmd {
	ctx, s := m.ctx, m.session

	command, arg, _ := strings.Cut(text, " ")
	switch command {
	case "/more":
		return func() tea.Msg { return turnDoneMsg{s.ShowMore(ctx)} }
	case "/clear":
		return func() tea.Msg { return turnDoneMsg{s.Clear(ctx)} }
	case "/book":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			m.setNotice("usage: /book <venue number>")
			return nil
		}
		return func() tea.Msg { return turnDoneMsg{s.Book(ctx, n)} }
	case "/quit", "/exit":
		return tea.Quit
	case "/help":
		m.setNotice(helpText)
		return nil
	}
	return func() tea.Msg { return turnDoneMsg{s.Send(ctx, text)} }
}

// handleTurnDone shows errors the transcript does not already record
func (m *chatModel) handleTurnDone(err error) {
	switch {
	case err == nil,
		domain.IsServerError(err),
		domain.IsTransportError(err),
		domain.IsProfileIncomplete(err):
		return
	case domain.IsNotFound(err):
		m.setNotice(domain.UserMessage(err))
	default:
		m.setNotice("error: " + domain.UserMessage(err))
	}
}

// handleWindowResize handles window size changes
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

	// rendering depends on width
	m.renderer = ui.NewRenderer(msg.Width-2, m.markdownStyle)
	m.resetMessages(m.messages)
}

func (m *chatModel) resetMessages(messages []domain.Message) {
	m.messages = append([]domain.Message(nil), messages...)
	m.rendered = make([]string, len(m.messages))
	for i, msg := range m.messages {
		m.rendered[i] = m.renderer.Message(msg)
	}
	m.refreshContent()
}

func (m *chatModel) setNotice(text string) {
	m.notice = text
	m.refreshContent()
}

// refreshContent refreshes the display content
func (m *chatModel) refreshContent() {
	parts := append([]string(nil), m.rendered...)
	if m.progress != "" {
		parts = append(parts, m.renderer.Progress(m.progress))
	}
	if len(parts) == 0 {
		parts = append(parts, dimStyle.Render("Tell me what you feel like tonight. Type /help for commands."))
	}
	if m.notice != "" {
		parts = append(parts, errorStyle.Render(m.notice))
	}

	m.contentView.SetContent(strings.Join(parts, "\n\n"))
	m.contentView.GotoBottom()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	status := dimStyle.Render("New conversation")
	if m.sessionID != "" {
		id := m.sessionID
		if len(id) > sessionIDDisplayLength {
			id = id[:sessionIDDisplayLength]
		}
		status = dimStyle.Render(fmt.Sprintf("Session %s", id))
	}
	switch {
	case m.state == session.StateSending:
		status += " " + m.spinner.View() + dimStyle.Render(" sending…")
	case m.state == session.StateStreaming:
		status += " " + m.spinner.View() + dimStyle.Render(" replying…")
	case m.state.Busy():
		status += dimStyle.Render(" • " + m.state.String())
	}

	var inputView string
	if m.state.InFlight() {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for the reply… (Esc to stop)")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	parts := []string{status, "", m.contentView.View(), "", inputView}
	if !m.state.InFlight() {
		parts = append(parts, dimStyle.Render(helpText))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
