package main

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	inputBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m model) Init() tea.Cmd {
	return m.initCmd
}

func (m *model) request() GenerationRequest {
	req := GenerationRequest{GoalSkill: strings.TrimSpace(m.goalInput), Mode: m.genMode}
	if m.genMode == GenerationMap {
		req.Layers = m.layers
	} else {
		req.NumberOfPaths = m.numPaths
	}
	return req
}

// startGeneration sets the goal, marks the board loading and returns the
// command that runs the generator off the update loop.
func (m *model) startGeneration(req GenerationRequest) tea.Cmd {
	if err := req.Validate(); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	if req.GoalSkill != m.board.GoalSkill() {
		m.board.SetGoalSkill(req.GoalSkill)
	}
	if err := m.board.BeginGeneration(req); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.lastRequest, m.hasRequested = req, true
	m.errorMessage, m.successMessage = "", ""

	gen, ctx := m.gen, m.ctx
	return func() tea.Msg {
		res, err := gen.Generate(ctx, req)
		return generationDoneMsg{res: res, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.board.SetContainer(m.width*cellWidth, m.canvasRows()*cellHeight)
		m.ensureCursorInBounds()
		return m, nil

	case generationDoneMsg:
		m.board.FinishGeneration(msg.res, msg.err)
		if m.board.Err() == "" {
			m.successMessage = fmt.Sprintf("%d elements", len(m.board.Elements()))
		}
		return m, nil

	case configReloadedMsg:
		m.cfg = msg.cfg
		m.board.SetEditTrigger(msg.cfg.UI.EditTrigger())
		m.gen = newGenerator(msg.cfg.Generator, m.log)
		m.successMessage = "config reloaded"
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.help {
			return m.handleHelpKey(msg)
		}
		switch m.mode {
		case ModeGoalInput:
			return m.handleGoalKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		case ModeMove:
			return m.handleMoveKey(msg)
		default:
			return m.handleCanvasKey(msg)
		}
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeCanvas || m.help {
		return m, nil
	}
	if msg.Y >= m.canvasRows() {
		m.board.PointerLeave()
		return m, nil
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	m.ensureCursorInBounds()
	p := m.cursorPixel()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		cell := point{msg.X, msg.Y}
		clicks := 1
		if cell == m.lastClickCell && time.Since(m.lastClickAt) < doubleClickMillis*time.Millisecond {
			clicks = 2
		}
		m.lastClickAt, m.lastClickCell = time.Now(), cell
		m.board.PointerDown(p, clicks)
	case tea.MouseActionRelease:
		m.board.PointerUp(p)
	case tea.MouseActionMotion:
		m.board.PointerMove(p)
	}
	return m, nil
}

func (m model) handleGoalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if strings.TrimSpace(m.goalInput) == "" {
			return m, nil
		}
		cmd := m.startGeneration(m.request())
		if cmd != nil {
			m.mode = ModeCanvas
		}
		return m, cmd
	case tea.KeyEscape:
		if m.board.GoalSkill() != "" {
			m.goalInput = m.board.GoalSkill()
			m.mode = ModeCanvas
		}
		return m, nil
	case tea.KeyTab:
		if m.genMode == GenerationPaths {
			m.genMode = GenerationMap
		} else {
			m.genMode = GenerationPaths
		}
		return m, nil
	case tea.KeyUp:
		m.adjustCount(1)
		return m, nil
	case tea.KeyDown:
		m.adjustCount(-1)
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.goalInput); len(r) > 0 {
			m.goalInput = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyCtrlV:
		if text, err := readClipboardText(); err == nil {
			m.goalInput += cleanClipboardText(text, true)
		}
		return m, nil
	case tea.KeySpace:
		m.goalInput += " "
		return m, nil
	case tea.KeyRunes:
		m.goalInput += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m *model) adjustCount(delta int) {
	if m.genMode == GenerationMap {
		m.layers = min(max(m.layers+delta, 1), 10)
		return
	}
	m.numPaths = min(max(m.numPaths+delta, 1), 5)
}

func (m model) handleCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if editor := m.board.Editing(); editor != nil {
		switch {
		case isPastedRunes(msg):
			editor.InsertText(cleanClipboardText(string(msg.Runes), true))
		case msg.Type == tea.KeyCtrlV:
			if text, err := readClipboardText(); err == nil {
				editor.InsertText(cleanClipboardText(text, true))
			} else {
				m.errorMessage = "clipboard: " + err.Error()
			}
		default:
			m.board.Key(msg.String())
		}
		return m, nil
	}
	key := msg.String()
	if m.board.Key(key) {
		return m, nil
	}
	m.errorMessage, m.successMessage = "", ""

	if isNavKey(key) {
		m.handleCursorMove(key, m.getMoveSpeed(key))
		return m, nil
	}

	p := m.cursorPixel()
	target := m.board.elementAt(p)
	switch key {
	case "n":
		el := m.board.AddElement(newElementText)
		m.focus(el)
	case "a":
		el := m.board.addElementAt(point{p.X - minElementWidth/2, p.Y - minElementHeight/2}, newElementText)
		m.focus(el)
	case "c":
		if el, ok := m.board.Element(target); ok {
			side := nearestSide(el, p.vec())
			m.board.StartConnection(el.ID, side, anchorPoint(el, side))
		}
	case "e", "enter":
		if v := m.board.View(target); v != nil && !v.BeginEdit() && target == startElementID {
			m.goalInput = m.board.GoalSkill()
			m.mode = ModeGoalInput
		}
	case "d", "x", "delete":
		if target != "" {
			if !m.board.DeleteElement(target) {
				m.errorMessage = ErrStartElement.Error()
			}
		} else if id, ok := m.board.layer.HitTest(p.vec(), pathHitTolerance); ok {
			m.board.DeleteConnection(id)
		}
	case "m":
		if el, ok := m.board.Element(target); ok && !el.IsStart {
			m.moveID, m.moveOrigin = el.ID, el.position()
			m.mode = ModeMove
		}
	case "y":
		if el, ok := m.board.Element(target); ok {
			if err := writeClipboardText(el.Text); err != nil {
				m.errorMessage = "clipboard: " + err.Error()
			} else {
				m.successMessage = "copied"
			}
		}
	case "r":
		if m.hasRequested {
			return m, m.startGeneration(m.lastRequest)
		}
	case "g", "i":
		m.goalInput = m.board.GoalSkill()
		m.mode = ModeGoalInput
	case "s":
		m.save(FileOpSaveVisualTXT)
	case "S":
		m.save(FileOpSavePNG)
	case "X":
		return m.confirm(ConfirmClearBoard)
	case "?":
		m.help = true
	case "q":
		return m.confirm(ConfirmQuit)
	case "esc":
		m.board.PointerLeave()
	}
	return m, nil
}

// isPastedRunes reports a burst of runes delivered as one key event, which
// is how a terminal paste arrives.
func isPastedRunes(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) > 1
}

func (m *model) focus(el Element) {
	m.cursorX = (el.X + el.Width/2) / cellWidth
	m.cursorY = (el.Y + el.Height/2) / cellHeight
	m.ensureCursorInBounds()
	m.board.PointerMove(m.cursorPixel())
}

// nearestSide picks the anchor side of el closest to p, in connectSides
// order on ties.
func nearestSide(el Element, p vec) Side {
	best := connectSides[0]
	bestDist := p.dist(anchorPoint(el, best))
	for _, side := range connectSides[1:] {
		if d := p.dist(anchorPoint(el, side)); d < bestDist {
			best, bestDist = side, d
		}
	}
	return best
}

func (m model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case isNavKey(key):
		m.handleElementMove(key, m.getMoveSpeed(key))
	case msg.Type == tea.KeyEnter:
		m.mode = ModeCanvas
	case msg.Type == tea.KeyEscape:
		m.board.MoveElement(m.moveID, m.moveOrigin.X, m.moveOrigin.Y)
		m.mode = ModeCanvas
	}
	return m, nil
}

func (m model) confirm(action ConfirmAction) (tea.Model, tea.Cmd) {
	if !m.cfg.UI.Confirmations {
		return m.apply(action)
	}
	m.confirmAction = action
	m.mode = ModeConfirm
	return m, nil
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeCanvas
		return m.apply(m.confirmAction)
	case "n", "N", "esc", "q":
		m.mode = ModeCanvas
	}
	return m, nil
}

func (m model) apply(action ConfirmAction) (tea.Model, tea.Cmd) {
	switch action {
	case ConfirmClearBoard:
		m.board.Clear()
		m.successMessage = "board cleared"
	case ConfirmQuit:
		return m, tea.Quit
	}
	return m, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func (m *model) saveName(ext string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(m.board.GoalSkill()), "-"), "-")
	if slug == "" {
		slug = "pathboard"
	}
	return m.cfg.GetSavePath(slug + ext)
}

func (m *model) save(op FileOperation) {
	var name string
	var err error
	switch op {
	case FileOpSavePNG:
		name = m.saveName(".png")
		err = exportPNG(m.board, name)
	default:
		name = m.saveName(".txt")
		err = exportVisualTXT(m.board, name, m.width, m.canvasRows())
	}
	if err != nil {
		m.errorMessage = err.Error()
		m.log.Error("export failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	m.successMessage = "saved " + name
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		m.helpScroll = max(m.helpScroll-1, 0)
	}
	return m, nil
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	if m.mode == ModeGoalInput {
		return m.goalView()
	}
	lines := renderBoard(m.board, max(m.width, 1), m.canvasRows(), renderOptions{
		cursor:     m.cursorPixel(),
		showCursor: m.board.Editing() == nil,
	})
	return strings.Join(lines, "\n") + "\n" + m.statusLine()
}

func (m model) modeString() string {
	switch m.mode {
	case ModeGoalInput:
		return "GOAL"
	case ModeCanvas:
		if m.board.Editing() != nil {
			return "EDIT"
		}
		if _, _, ok := m.board.Connecting(); ok {
			return "CONNECT"
		}
		return "CANVAS"
	case ModeMove:
		return "MOVE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	parts := []string{modeStyle.Render(m.modeString())}
	if goal := m.board.GoalSkill(); goal != "" {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("%s (%s)", goal, m.board.Mode())))
	}
	switch {
	case m.mode == ModeConfirm && m.confirmAction == ConfirmClearBoard:
		parts = append(parts, errorStyle.Render("Clear the board? (y/n)"))
	case m.mode == ModeConfirm:
		parts = append(parts, errorStyle.Render("Quit? (y/n)"))
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render("ERROR: "+m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	case m.connectHint() != "":
		parts = append(parts, dimStyle.Render(m.connectHint()))
	default:
		parts = append(parts, dimStyle.Render("? for help | q to quit"))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(strings.Join(parts, " "))
}

// connectHint describes an in-progress connection and where it would land.
func (m model) connectHint() string {
	from, side, ok := m.board.Connecting()
	if !ok {
		return ""
	}
	label := from
	if el, found := m.board.Element(from); found {
		label = el.Text
	}
	x, y := toCell(m.board.Pointer().vec())
	return fmt.Sprintf("linking %s (%s) to %d,%d | click a target, esc cancels", label, side, x, y)
}

func (m model) goalView() string {
	count := fmt.Sprintf("paths: %d", m.numPaths)
	if m.genMode == GenerationMap {
		count = fmt.Sprintf("layers: %d", m.layers)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("What do you want to learn?"),
		"",
		"> "+m.goalInput+"█",
		"",
		statusStyle.Render(fmt.Sprintf("mode: %s   %s", m.genMode, count)),
		dimStyle.Render("enter generate | tab path/map | ↑/↓ count | esc back"),
	)
	if m.errorMessage != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", errorStyle.Render(m.errorMessage))
	}
	return lipgloss.Place(max(m.width, 1), max(m.height, 1), lipgloss.Center, lipgloss.Center, inputBox.Render(body))
}

var helpLines = []string{
	"pathboard help",
	"==============",
	"",
	"Mouse:",
	"------",
	"  drag element        Move it, snapped to the grid",
	"  drag ◢              Resize",
	"  drag ◆              Connect; drop on empty space creates a new element",
	"  click ×             Delete element and its connections",
	"  click a curve       Delete that connection",
	"  click / dbl-click   Edit text (see ui.edit_on)",
	"",
	"Keyboard:",
	"---------",
	"  h/j/k/l, arrows     Move cursor (Shift for 2x)",
	"  n                   New element at a random spot",
	"  a                   New element at cursor",
	"  c                   Connect from element under cursor; Enter drops, Esc cancels",
	"  e / Enter           Edit element under cursor (start element: edit goal)",
	"  d / x               Delete element or connection under cursor",
	"  m                   Move element under cursor; Enter keeps, Esc reverts",
	"  y                   Copy element text",
	"  Ctrl+V              Paste into the editor",
	"  g                   Change goal skill",
	"  r                   Regenerate",
	"  s / S               Save as text / PNG",
	"  X                   Clear board",
	"  ?                   Toggle this help",
	"  q / Ctrl+C          Quit",
}

func (m model) helpView() string {
	visible := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(helpLines))
	return strings.Join(helpLines[start:end], "\n") + "\n" + dimStyle.Render(status)
}
