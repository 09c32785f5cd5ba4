package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brensch/nssfetch/internal/config"
	nprogress "github.com/brensch/nssfetch/internal/progress"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and returns the first non-batch message it yields.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if m := runCmd(c); m != nil {
				return m
			}
		}
		return nil
	}
	return msg
}

func TestMenuNavigation(t *testing.T) {
	m := NewAppModel(config.Default(), nil)
	m.Update(key("down"))
	m.Update(key("down"))
	if m.menuCursor != 2 {
		t.Fatalf("cursor = %d", m.menuCursor)
	}
	m.Update(key("down"))
	m.Update(key("down"))
	if m.menuCursor != len(m.menuChoices)-1 {
		t.Errorf("cursor should stop at the last entry, got %d", m.menuCursor)
	}
	if !strings.Contains(m.View(), choiceDownload) {
		t.Error("menu view should list the download action")
	}
}

func TestShowStatus(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, config.PDFSubdir), 0o755)
	os.WriteFile(filepath.Join(root, config.PDFSubdir, "a.pdf"), nil, 0o644)

	cfg := config.Default()
	cfg.DestDir = root
	m := NewAppModel(cfg, nil)
	m.menuCursor = 2

	_, cmd := m.Update(key("enter"))
	msg := runCmd(cmd)
	if _, ok := msg.(StatusReportMsg); !ok {
		t.Fatalf("expected StatusReportMsg, got %T", msg)
	}
	m.Update(msg)
	if m.State != ShowStatus || !strings.Contains(m.View(), "Empty placeholders:   1") {
		t.Errorf("state = %v, view:\n%s", m.State, m.View())
	}
	m.Update(key("enter"))
	if m.State != ShowMenu {
		t.Errorf("enter should return to the menu, state = %v", m.State)
	}
}

func TestShowStatusWithoutDest(t *testing.T) {
	m := NewAppModel(config.Default(), nil)
	msg := runCmd(m.inspectCmd())
	ge, ok := msg.(GeneralErrorMsg)
	if !ok {
		t.Fatalf("expected GeneralErrorMsg, got %T", msg)
	}
	if !config.IsConfigError(ge.Err) {
		t.Errorf("error = %v, want a config error", ge.Err)
	}
	m.Update(msg)
	if m.State != ShowError || !strings.Contains(m.View(), ge.Err.Error()) {
		t.Errorf("state = %v, view:\n%s", m.State, m.View())
	}
}

func TestProgressAndStop(t *testing.T) {
	m := NewAppModel(config.Default(), nil)
	m.resetTask(DownloadingFiles, tagDownload)
	rc := m.runCtx

	m.Update(NewProgress(tagDownload, nprogress.Update{Position: 1, Total: 3, Item: "1 As 1 2020 1.pdf", Outcome: nprogress.Downloaded}))
	m.Update(NewProgress(tagConvert, nprogress.Update{Position: 1, Total: 1, Item: "other", Outcome: nprogress.Converted}))
	if len(m.fileProgress) != 1 || m.overallCurrent != 1 || m.overallTotal != 3 {
		t.Fatalf("progress table = %+v current=%d total=%d", m.fileProgress, m.overallCurrent, m.overallTotal)
	}
	if !strings.Contains(m.View(), "1 As 1 2020 1.pdf") {
		t.Errorf("progress view missing item:\n%s", m.View())
	}

	m.Update(key("s"))
	if !rc.Stopped() || !m.stopRequested {
		t.Fatal("'s' should set the stop flag")
	}
	if m.State != DownloadingFiles {
		t.Errorf("stop must not leave the progress view before the run finishes, state = %v", m.State)
	}

	start := time.Now().Add(-time.Second)
	m.Update(NewTaskFinished(tagDownload, start, nil, true, []string{"new:      1"}))
	if m.State != ShowSummary || !strings.Contains(m.View(), "Download stopped") {
		t.Errorf("state = %v, view:\n%s", m.State, m.View())
	}
}

func TestTaskFailure(t *testing.T) {
	m := NewAppModel(config.Default(), nil)
	m.resetTask(ConvertingFiles, tagConvert)
	m.Update(NewTaskFinished(tagConvert, time.Now(), errors.New("boom"), false, nil))
	if m.State != ShowError || !strings.Contains(m.View(), "boom") {
		t.Errorf("state = %v, view:\n%s", m.State, m.View())
	}
}

func TestQuitUnblocksSenders(t *testing.T) {
	m := NewAppModel(config.Default(), nil)
	m.resetTask(DownloadingFiles, tagDownload)
	ch := m.uiMsgChan
	m.Update(key("q"))
	if m.State != Exiting || !m.runCtx.Stopped() {
		t.Fatalf("state = %v", m.State)
	}
	sent := make(chan struct{})
	go func() {
		send(ch, m.done, NewError(errors.New("late")))
		close(sent)
	}()
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send blocked after quit")
	}
}
