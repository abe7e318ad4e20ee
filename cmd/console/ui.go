package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/prompts"
	pkgqueue "github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "Type your message here..."
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	game         *Game
	status       *Status
	history      []chat.ChatMessage
	firedEvents  []string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Scenario selection state
	showScenarioModal bool
	scenarios         []string
	scenarioMap       map[string]string
	selectedScenario  int
	loadingScenarios  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	result pkgqueue.TurnResult
	err    error
}

type statusMsg struct {
	status *Status
	err    error
}

type scenariosLoadedMsg struct {
	scenarios   []string
	scenarioMap map[string]string
	err         error
}

type gameCreatedMsg struct {
	game    *Game
	opening pkgqueue.TurnResult
	err     error
}

type progressTickMsg struct{}

// Palette (256-colour codes).
const (
	colPink   = lipgloss.Color("205")
	colPurple = lipgloss.Color("212")
	colGreen  = lipgloss.Color("86")
	colTeal   = lipgloss.Color("39")
	colRed    = lipgloss.Color("196")
	colAmber  = lipgloss.Color("214")
	colDim    = lipgloss.Color("240")
	colBorder = lipgloss.Color("62")
	colShade  = lipgloss.Color("235")
	colLight  = lipgloss.Color("255")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	chatPanelStyle = lipgloss.NewStyle().Padding(2, 0, 1, 3)
	metaPanelStyle = lipgloss.NewStyle().Padding(2, 2, 0, 0)

	titleStyle     = fg(colPink).Bold(true)
	speakerStyle   = fg(colPurple).Bold(true)
	narratorStyle  = fg(colGreen)
	userStyle      = fg(colTeal)
	errorStyle     = fg(colRed)
	loadingStyle   = fg(colAmber)
	promptStyle    = fg(colDim)
	separatorStyle = fg(colDim)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colBorder).
			Background(colShade).
			Foreground(colLight).
			Padding(1, 2)
	modalTitleStyle    = titleStyle.Align(lipgloss.Center)
	modalItemStyle     = fg(colLight)
	modalSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colPink).Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:            cfg,
		textarea:          ta,
		chatViewport:      chatVp,
		metaViewport:      metaVp,
		showScenarioModal: true,
		loadingScenarios:  true,
	}
}

func writeHeader(content *strings.Builder, chatWidth int) {
	content.WriteString(titleStyle.Render("TURN ENGINE") + "\n\n")
	content.WriteString("Type your messages below to interact with the story.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")
}

func writeMetadata(scn *scenario.Scenario, st *Status, fired []string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Scenario:\n")
	content.WriteString(scn.Name + "\n\n")

	if st == nil {
		return content.String()
	}

	if w := st.World; w != nil {
		content.WriteString("Time:\n")
		content.WriteString(fmt.Sprintf("%s (%s)\n", w.Clock.Format("Jan 2, 15:04"), w.TimeOfDay()))
		if w.Weather != "" {
			content.WriteString(w.Weather + "\n")
		}
		content.WriteString("\n")
	}

	if p := st.Player; p != nil {
		content.WriteString("Location:\n")
		content.WriteString(prompts.DisplayName(p.Location, "") + "\n\n")

		content.WriteString("Health:\n")
		if p.MaxHealth > 0 {
			content.WriteString(fmt.Sprintf("%d / %d\n\n", p.Health, p.MaxHealth))
		} else {
			content.WriteString(fmt.Sprintf("%d\n\n", p.Health))
		}

		content.WriteString("Inventory:\n")
		if len(p.Inventory) == 0 {
			content.WriteString("Empty\n")
		}
		for _, item := range p.Inventory {
			if item.Quantity > 1 {
				content.WriteString(fmt.Sprintf("• %s x%d\n", item.Name, item.Quantity))
			} else {
				content.WriteString(fmt.Sprintf("• %s\n", item.Name))
			}
		}
		content.WriteString("\n")
	}

	if c := st.Combat; c != nil {
		content.WriteString(errorStyle.Render("IN COMBAT") + "\n")
		content.WriteString(fmt.Sprintf("%s\n%d successes needed\n\n", c.EnemyName, c.Remaining()))
	}

	if len(fired) > 0 {
		content.WriteString("Recent events:\n")
		for _, id := range fired {
			content.WriteString("• " + id + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Messages:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", st.Messages))

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy last reply\n")

	return content.String()
}

// writeChatContent builds the chat content for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	writeHeader(&content, chatWidth)

	for _, msg := range m.history {
		switch msg.Role {
		case chat.ChatRoleAgent:
			content.WriteString(formatNarratorResponse(msg.Content, chatWidth) + "\n\n")
		case chat.ChatRoleSystem:
			content.WriteString(promptStyle.Render(wordwrap.String(msg.Content, chatWidth)) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// lastNarrative returns the most recent narrator reply.
func (m ConsoleUI) lastNarrative() string {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role == chat.ChatRoleAgent {
			return m.history[i].Content
		}
	}
	return ""
}

func (m *ConsoleUI) appendResult(res pkgqueue.TurnResult) {
	if res.NarrativeText != "" {
		m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: res.NarrativeText})
	}
	if res.CombatInitiated {
		m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: "Combat has begun."})
	} else if !res.CombatPending && m.status != nil && m.status.Combat != nil {
		m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: "The fight is over."})
	}
	if len(res.FiredEvents) > 0 {
		m.firedEvents = res.FiredEvents
	}
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) refreshMetadata() {
	if m.game != nil {
		m.metaViewport.SetContent(writeMetadata(m.game.Scenario, m.status, m.firedEvents))
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showScenarioModal {
		return m.loadScenarios()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle scenario modal first
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.refreshMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.err = nil

			m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleUser, Content: input})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.appendResult(msg.result)
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshStatus()

	case statusMsg:
		if msg.err == nil && msg.status != nil {
			m.status = msg.status
			m.refreshMetadata()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// speakerPrefix splits "Name: text" when the part before the colon is
// short enough to be a speaker name.
func speakerPrefix(line string) (speaker, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 20 {
		return "", line, false
	}
	speaker = line[:idx]
	if len(strings.Fields(speaker)) > 2 {
		return "", line, false
	}
	return speaker, line[idx+1:], true
}

// formatNarratorResponse wraps a reply to width and highlights speaker
// names. Replies without a leading speaker are attributed to the narrator.
func formatNarratorResponse(response string, width int) string {
	_, _, attributed := speakerPrefix(response)
	if !attributed {
		width -= len(AgentName + ": ")
	}

	lines := strings.Split(wordwrap.String(response, max(width, 10)), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if speaker, rest, ok := speakerPrefix(trimmed); ok {
			lines[i] = speakerStyle.Render(speaker+":") + rest
		} else if trimmed == "" {
			lines[i] = ""
		}
	}

	out := strings.Join(lines, "\n")
	if !attributed {
		out = narratorStyle.Render(AgentName+": ") + out
	}
	return out
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	currentContent := m.chatViewport.View()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the narrator's last reply
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• The narrator will respond to guide the story
• During a fight, describe what you try; the narrator decides how it goes
`
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")

	case "/copy":
		note := "Nothing to copy yet."
		if last := m.lastNarrative(); last != "" {
			if err := clipboard.WriteAll(last); err != nil {
				note = errorStyle.Render("Copy failed: " + err.Error())
			} else {
				note = "Copied the last reply to the clipboard."
			}
		}
		m.chatViewport.SetContent(currentContent + promptStyle.Render(note) + "\n\n")

	default:
		m.chatViewport.SetContent(currentContent + errorStyle.Render("Unknown command: "+cmd) + "\n\n")
	}

	m.chatViewport.GotoBottom()
	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	game := m.game
	return func() tea.Msg {
		res, err := game.Send(context.Background(), message)
		return chatResponseMsg{res, err}
	}
}

func (m ConsoleUI) refreshStatus() tea.Cmd {
	game := m.game
	return func() tea.Msg {
		st, err := game.Status(context.Background())
		return statusMsg{st, err}
	}
}

func (m ConsoleUI) loadScenarios() tea.Cmd {
	catalog := m.config.Catalog
	return func() tea.Msg {
		scenarioMap, err := catalog.ListScenarios(context.Background())
		if err != nil {
			return scenariosLoadedMsg{err: err}
		}
		names := make([]string, 0, len(scenarioMap))
		for name := range scenarioMap {
			names = append(names, name)
		}
		sort.Strings(names)
		return scenariosLoadedMsg{names, scenarioMap, nil}
	}
}

func (m ConsoleUI) createGame(scenarioFile string) tea.Cmd {
	cfg := m.config
	return func() tea.Msg {
		ctx := context.Background()
		scn, err := cfg.Catalog.GetScenario(ctx, scenarioFile)
		if err != nil {
			return gameCreatedMsg{err: err}
		}
		game, err := StartGame(scn, cfg.Backend, cfg.BackendTimeout, cfg.Logger)
		if err != nil {
			return gameCreatedMsg{err: err}
		}
		opening, err := game.Open(ctx)
		if err != nil {
			game.Stop()
			return gameCreatedMsg{err: fmt.Errorf("opening turn failed: %w", err)}
		}
		return gameCreatedMsg{game: game, opening: opening}
	}
}

func (m ConsoleUI) updateScenarioModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case scenariosLoadedMsg:
		m.loadingScenarios = false
		if msg.err != nil {
			m.err = msg.err
		} else if len(msg.scenarios) == 0 {
			m.err = fmt.Errorf("no scenarios found in %s", m.config.ScenarioDir)
		} else {
			m.scenarios = msg.scenarios
			m.scenarioMap = msg.scenarioMap
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.game = msg.game
		m.showScenarioModal = false
		m.appendResult(msg.opening)
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.writeChatContent()
		m.refreshMetadata()
		m.textarea.Focus()
		m.ready = true
		return m, tea.Batch(textarea.Blink, m.refreshStatus())

	case tea.KeyMsg:
		if m.loadingScenarios {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			m.showScenarioModal = false
			return m, nil
		}

		if m.err != nil || m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedScenario > 0 {
				m.selectedScenario--
			}
		case tea.KeyDown:
			if m.selectedScenario < len(m.scenarios)-1 {
				m.selectedScenario++
			}
		case tea.KeyEnter:
			if len(m.scenarios) > 0 {
				scenarioFile := m.scenarioMap[m.scenarios[m.selectedScenario]]
				m.loading = true
				return m, m.createGame(scenarioFile)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.game == nil {
					m.showScenarioModal = true
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

// placeModal centres a titled box on the screen.
func (m ConsoleUI) placeModal(width int, title string, body ...string) string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	content := modalTitleStyle.Render(title) + "\n\n" + strings.Join(body, "\n\n")
	box := modalStyle.Width(width).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	return m.placeModal(50, "Leave the story?",
		"Your progress in this session will be lost.",
		promptStyle.Render("Y quits, N returns to the game"),
	)
}

func (m ConsoleUI) renderScenarioModal() string {
	switch {
	case m.loadingScenarios:
		return m.placeModal(60, "Scenarios", loadingStyle.Render("Reading "+m.config.ScenarioDir+"..."))
	case m.err != nil:
		return m.placeModal(60, "Cannot start", errorStyle.Render(m.err.Error()), "Ctrl+C exits")
	case m.loading:
		return m.placeModal(60, "Starting", loadingStyle.Render("Waiting for the opening narration..."))
	}

	var list strings.Builder
	for i, name := range m.scenarios {
		if i == m.selectedScenario {
			list.WriteString(modalSelectedStyle.Render("▶ " + name))
		} else {
			list.WriteString(modalItemStyle.Render("  " + name))
		}
		list.WriteString("\n")
	}
	return m.placeModal(60, "Choose a scenario",
		strings.TrimSuffix(list.String(), "\n"),
		promptStyle.Render("↑/↓ move, Enter starts, Ctrl+C exits"),
	)
}

func (m ConsoleUI) View() string {
	if m.showScenarioModal {
		return m.renderScenarioModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

const progressFrames = 40

// renderProgressBar draws a sweeping bar while a turn is in flight.
func (m ConsoleUI) renderProgressBar() string {
	width := m.chatViewport.Width - 6
	if width <= 0 {
		width = 30
	}
	width = min(max(width, 10), 80)

	frame := m.progressTick % progressFrames
	filled := frame * width / progressFrames
	head := ""
	if frame%4 < 2 {
		head = "▓"
	}
	rest := width - filled - len([]rune(head))
	return separatorStyle.Render(strings.Repeat("█", filled) + head + strings.Repeat("░", max(rest, 0)))
}

func progressTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return progressTickMsg{} })
}
