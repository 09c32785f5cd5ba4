package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	"github.com/brensch/nssfetch/internal/inspector"
	"github.com/brensch/nssfetch/internal/orchestrator"
	nprogress "github.com/brensch/nssfetch/internal/progress"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---
var (
	titleStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	menuStyle               = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("79"))
	errorStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	progressBarStyle        = lipgloss.NewStyle().Padding(0, 1)
	fileProgressHeaderStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	fileStatusStyle         = map[nprogress.Outcome]lipgloss.Style{
		nprogress.Downloaded: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		nprogress.Converted:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		nprogress.Replaced:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		nprogress.Skipped:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		nprogress.Failed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

const (
	choiceDownload = "Download decisions"
	choiceConvert  = "Convert to text"
	choiceStatus   = "Show status"
	choiceExit     = "Exit"

	tagDownload = "Download"
	tagConvert  = "Convert"
)

// --- Model ---
type FileProgress struct {
	FileName string
	Status   nprogress.Outcome
	Elapsed  time.Duration
}

type AppModel struct {
	Cfg    config.Config
	Logger *slog.Logger
	State  AppState

	// Options are handed to every pipeline run; tests swap in fakes.
	Options orchestrator.Options

	menuChoices      []string
	menuCursor       int
	spinner          spinner.Model
	overallProgress  progress.Model
	progressBarWidth int

	mu             sync.RWMutex
	fileProgress   []FileProgress
	overallTotal   int
	overallCurrent int
	currentTaskTag string
	taskStartTime  time.Time
	lastUpdate     time.Time

	runCtx        *nprogress.RunContext
	stopRequested bool
	summaryTitle  string
	summaryLines  []string
	statusText    string

	lastError error
	Quitting  bool

	termWidth  int
	termHeight int

	uiMsgChan chan tea.Msg
	done      chan struct{}
}

func NewAppModel(cfg config.Config, logger *slog.Logger) *AppModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	prog := progress.New(progress.WithDefaultGradient())

	return &AppModel{
		Cfg:             cfg,
		Logger:          logger,
		State:           ShowMenu,
		menuChoices:     []string{choiceDownload, choiceConvert, choiceStatus, choiceExit},
		spinner:         s,
		overallProgress: prog,
		termWidth:       80,
		termHeight:      24,
		done:            make(chan struct{}),
	}
}

// --- Bubbletea Interface ---

func (m *AppModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.State == ShowMenu:
			cmds = append(cmds, m.handleMenuKey(msg))
		case m.State.running():
			cmds = append(cmds, m.handleRunningKey(msg))
		case m.State == ShowStatus || m.State == ShowSummary || m.State == ShowError:
			switch msg.String() {
			case "enter", "esc":
				m.State = ShowMenu
				m.lastError = nil
			case "ctrl+c", "q":
				return m, m.quit()
			}
		case m.State == Exiting:
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.progressBarWidth = max(0, m.termWidth-20)
		m.overallProgress.Width = m.progressBarWidth
	case ProgressMsg:
		cmds = append(cmds, m.applyProgress(msg), m.waitForActivityCmd(m.uiMsgChan))
	case TaskFinishedMsg:
		m.finishTask(msg)
	case StatusReportMsg:
		var b strings.Builder
		msg.Report.Print(&b, 10)
		m.statusText = b.String()
		m.State = ShowStatus
	case GeneralErrorMsg:
		m.Logger.Error("General error", "error", msg.Err)
		m.lastError = msg.Err
		m.State = ShowError
		m.uiMsgChan = nil
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case progress.FrameMsg:
		progModel, frameCmd := m.overallProgress.Update(msg)
		if newModel, ok := progModel.(progress.Model); ok {
			m.overallProgress = newModel
			cmds = append(cmds, frameCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("--- NSS Decision Fetcher ---"))
	b.WriteString("\n\n")

	switch m.State {
	case ShowMenu:
		b.WriteString(m.viewMenu())
	case DownloadingFiles, ConvertingFiles:
		b.WriteString(m.viewProgress())
	case ShowStatus:
		b.WriteString(m.statusText)
	case ShowSummary:
		b.WriteString(m.viewSummary())
	case ShowError:
		b.WriteString(m.viewError())
	case Exiting:
		b.WriteString(infoStyle.Render("Exiting..."))
	}

	b.WriteString("\n\n")
	switch {
	case m.State == ShowMenu:
		b.WriteString(infoStyle.Render("Use up/down arrows and Enter to select. 'q' or Ctrl+C to quit."))
	case m.State.running():
		b.WriteString(infoStyle.Render("Task running... 's' to stop after the current file, 'q' or Ctrl+C to quit."))
	case m.State != Exiting:
		b.WriteString(infoStyle.Render("Press Enter or Esc to return to menu. 'q' or Ctrl+C to quit."))
	}

	return b.String()
}

// --- View Helpers ---

func (m *AppModel) viewMenu() string {
	var b strings.Builder
	b.WriteString("Select an action:\n")
	for i, choice := range m.menuChoices {
		var lineContent string
		if m.menuCursor == i {
			lineContent = "> " + selectedStyle.Render(choice)
		} else {
			lineContent = "  " + choice
		}
		b.WriteString(menuStyle.Render(lineContent))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("index: %s\ndest:  %s", orNone(m.Cfg.IndexPath), orNone(m.Cfg.DestDir))))
	return b.String()
}

func (m *AppModel) viewProgress() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var b strings.Builder
	activity := ""
	if m.stopRequested {
		activity = warnStyle.Render("stopping after current file...")
	}
	b.WriteString(fmt.Sprintf("%s Running Task: %s %s\n", m.spinner.View(), m.currentTaskTag, activity))
	b.WriteString(progressBarStyle.Render(m.overallProgress.View()))
	b.WriteString(fmt.Sprintf(" (%d/%d)\n\n", m.overallCurrent, m.overallTotal))

	maxLines := max(1, m.termHeight-10)
	startIdx := 0
	if len(m.fileProgress) > maxLines {
		startIdx = len(m.fileProgress) - maxLines
	}

	if len(m.fileProgress) > 0 {
		b.WriteString(fileProgressHeaderStyle.Render(fmt.Sprintf("%-40s | %-10s | %s", "File", "Status", "Elapsed")))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", m.termWidth))
		b.WriteString("\n")
		for _, fp := range m.fileProgress[startIdx:] {
			style, ok := fileStatusStyle[fp.Status]
			if !ok {
				style = infoStyle
			}
			fileName := fp.FileName
			if r := []rune(fileName); len(r) > 40 {
				fileName = string(r[:37]) + "..."
			}
			b.WriteString(fmt.Sprintf("%-40s | %s | %s\n", fileName, style.Render(fmt.Sprintf("%-10s", fp.Status)), fp.Elapsed.Round(time.Millisecond)))
		}
	}
	return b.String()
}

func (m *AppModel) viewSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.summaryTitle))
	b.WriteString("\n\n")
	for _, l := range m.summaryLines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *AppModel) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("An error occurred:"))
	b.WriteString("\n\n")
	if m.lastError != nil {
		b.WriteString(wrapText(m.lastError.Error(), m.termWidth-4))
	} else {
		b.WriteString("Unknown error.")
	}
	b.WriteString("\n")
	return b.String()
}

// --- Update Helpers ---

func (m *AppModel) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.menuChoices)-1 {
			m.menuCursor++
		}
	case "enter":
		m.lastError = nil
		choice := m.menuChoices[m.menuCursor]
		m.Logger.Debug("Menu selection", "choice", choice)
		switch choice {
		case choiceDownload:
			return m.startTask(DownloadingFiles, tagDownload)
		case choiceConvert:
			return m.startTask(ConvertingFiles, tagConvert)
		case choiceStatus:
			return m.inspectCmd()
		case choiceExit:
			return m.quit()
		}
	case "ctrl+c", "q":
		return m.quit()
	}
	return nil
}

func (m *AppModel) handleRunningKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "s":
		if m.runCtx != nil && !m.stopRequested {
			m.Logger.Info("Stop requested", "run_id", m.runCtx.ID.String())
			m.runCtx.Stop()
			m.stopRequested = true
		}
	case "ctrl+c", "q":
		if m.runCtx != nil {
			m.runCtx.Stop()
		}
		return m.quit()
	}
	return nil
}

func (m *AppModel) quit() tea.Cmd {
	if !m.Quitting {
		close(m.done)
	}
	m.Quitting = true
	m.State = Exiting
	m.uiMsgChan = nil
	return tea.Quit
}

func (m *AppModel) applyProgress(msg ProgressMsg) tea.Cmd {
	if msg.Tag != m.currentTaskTag {
		return nil
	}
	m.mu.Lock()
	since := m.lastUpdate
	if since.IsZero() {
		since = m.taskStartTime
	}
	m.fileProgress = append(m.fileProgress, FileProgress{
		FileName: msg.Update.Item,
		Status:   msg.Update.Outcome,
		Elapsed:  msg.At.Sub(since),
	})
	m.lastUpdate = msg.At
	m.overallCurrent = msg.Update.Position
	m.overallTotal = msg.Update.Total
	m.mu.Unlock()

	var percent float64
	if msg.Update.Total > 0 {
		percent = float64(msg.Update.Position) / float64(msg.Update.Total)
	}
	return m.overallProgress.SetPercent(percent)
}

func (m *AppModel) finishTask(msg TaskFinishedMsg) {
	m.Logger.Info("Task finished", "task", msg.Tag, "duration", msg.EndTime.Sub(msg.StartTime).Round(time.Millisecond), "stopped", msg.Stopped)
	m.uiMsgChan = nil
	m.runCtx = nil
	if msg.Err != nil {
		m.lastError = fmt.Errorf("task '%s' failed: %w", msg.Tag, msg.Err)
		m.State = ShowError
		return
	}
	m.summaryTitle = msg.Tag + " finished"
	if msg.Stopped {
		m.summaryTitle = msg.Tag + " stopped"
	}
	m.summaryLines = append(msg.Lines, "", fmt.Sprintf("Took %s.", msg.EndTime.Sub(msg.StartTime).Round(time.Millisecond)))
	m.State = ShowSummary
}

// resetTask clears the progress table for a new run.
func (m *AppModel) resetTask(state AppState, tag string) {
	m.mu.Lock()
	m.fileProgress = nil
	m.overallCurrent = 0
	m.overallTotal = 0
	m.lastUpdate = time.Time{}
	m.mu.Unlock()
	m.State = state
	m.currentTaskTag = tag
	m.taskStartTime = time.Now()
	m.stopRequested = false
	m.runCtx = nprogress.NewRunContext()
	m.uiMsgChan = make(chan tea.Msg)
}

// waitForActivityCmd reads the next message from the running pipeline. It is
// re-issued after each ProgressMsg so there is only ever one reader.
func (m *AppModel) waitForActivityCmd(uiMsgChan chan tea.Msg) tea.Cmd {
	if uiMsgChan == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-uiMsgChan
		if !ok {
			return nil
		}
		return msg
	}
}

// send delivers msg unless the UI has quit.
func send(ch chan<- tea.Msg, done <-chan struct{}, msg tea.Msg) {
	select {
	case ch <- msg:
	case <-done:
	}
}

// --- Task Starters ---

func (m *AppModel) startTask(state AppState, tag string) tea.Cmd {
	m.resetTask(state, tag)
	ch, done, rc, start := m.uiMsgChan, m.done, m.runCtx, m.taskStartTime
	cfg, opts := m.Cfg, m.Options
	logger := m.Logger.With("run_id", rc.ID.String())

	opts.Hooks = nprogress.Hooks{
		Progress: func(u nprogress.Update) { send(ch, done, NewProgress(tag, u)) },
		Stop:     rc.StopFunc(),
	}

	launch := func() tea.Msg {
		go func() {
			var (
				lines []string
				err   error
			)
			defer func() {
				send(ch, done, NewTaskFinished(tag, start, err, rc.Stopped(), lines))
				close(ch)
			}()
			switch tag {
			case tagDownload:
				sum, e := orchestrator.RunDownloadPhase(context.Background(), cfg, logger, opts)
				err = e
				c := sum.Counts()
				lines = []string{
					fmt.Sprintf("new:      %d", c.New),
					fmt.Sprintf("skipped:  %d", c.Skipped),
					fmt.Sprintf("replaced: %d", c.Replaced),
					fmt.Sprintf("failed:   %d", c.Failed),
				}
				lines = append(lines, indent(sum.Failed)...)
			case tagConvert:
				sum, e := orchestrator.RunConvertPhase(context.Background(), cfg, logger, opts)
				err = e
				c := sum.Counts()
				lines = []string{
					fmt.Sprintf("converted: %d", c.Converted),
					fmt.Sprintf("skipped:   %d", c.Skipped),
					fmt.Sprintf("failed:    %d", c.Failed),
				}
				lines = append(lines, indent(sum.Failed)...)
			}
		}()
		return nil
	}
	return tea.Batch(launch, m.waitForActivityCmd(ch), m.spinner.Tick)
}

func (m *AppModel) inspectCmd() tea.Cmd {
	dest := m.Cfg.DestDir
	return func() tea.Msg {
		if err := m.Cfg.ValidateConvert(); err != nil {
			return NewError(err)
		}
		r, err := inspector.Inspect(dest)
		if err != nil {
			return NewError(err)
		}
		return StatusReportMsg{Report: r}
	}
}

// --- Helpers ---

func indent(names []string) []string {
	const limit = 15
	out := make([]string, 0, min(len(names), limit)+1)
	for i, n := range names {
		if i == limit {
			out = append(out, fmt.Sprintf("    ... and %d more", len(names)-limit))
			break
		}
		out = append(out, "    "+n)
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	var result strings.Builder
	var currentLine strings.Builder
	for _, word := range strings.Fields(text) {
		if currentLine.Len() > 0 && currentLine.Len()+len(word)+1 > maxWidth {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
		}
		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}
	result.WriteString(currentLine.String())
	return result.String()
}
