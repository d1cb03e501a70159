// Package tui is the live progress view shown while a run is in flight.
// It consumes runner snapshots and exits once the run drains; the final
// summary prints to the plain terminal afterwards.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"surge/internal/config"
	"surge/internal/runner"
	"surge/internal/stats"
)

type snapshotMsg runner.Snapshot

type doneMsg stats.Summary

type Model struct {
	cfg     config.Config
	updates runner.SnapshotChan
	done    <-chan stats.Summary
	stop    func()

	progress progress.Model
	spinner  spinner.Model
	snap     runner.Snapshot

	stopping bool
	width    int

	// Summary is set once the run has drained.
	Summary *stats.Summary
}

// NewModel wires the view to a running load test. stop cancels the run
// context so no further tickets are claimed.
func NewModel(cfg config.Config, updates runner.SnapshotChan, done <-chan stats.Summary, stop func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return Model{
		cfg:      cfg,
		updates:  updates,
		done:     done,
		stop:     stop,
		progress: progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
		width:    60,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForSnapshot(m.updates), waitForDone(m.done))
}

func waitForSnapshot(ch runner.SnapshotChan) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func waitForDone(ch <-chan stats.Summary) tea.Cmd {
	return func() tea.Msg {
		return doneMsg(<-ch)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "s", "ctrl+c":
			// Stop claiming new tickets, wait for the drain
			m.stopping = true
			m.stop()
		}
		return m, nil

	case snapshotMsg:
		m.snap = runner.Snapshot(msg)
		cmds := []tea.Cmd{waitForSnapshot(m.updates)}
		if m.cfg.Bounded() {
			pct := float64(m.snap.Completed) / float64(m.cfg.Requests)
			if pct > 1.0 {
				pct = 1.0
			}
			cmds = append(cmds, m.progress.SetPercent(pct))
		}
		return m, tea.Batch(cmds...)

	case doneMsg:
		s := stats.Summary(msg)
		m.Summary = &s
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.progress.Update(msg)
		m.progress = prog.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + titleStyle.Render("surge") + subtleStyle.Render("  "+m.cfg.Method+" "+m.cfg.URL) + "\n\n")

	if m.cfg.Bounded() {
		b.WriteString("  " + m.progress.View() + "\n\n")
	} else {
		b.WriteString("  " + m.spinner.View() + subtleStyle.Render(" paranoid run, press q to stop") + "\n\n")
	}

	rps := 0.0
	if m.snap.Elapsed > 0 {
		rps = float64(m.snap.Completed) / m.snap.Elapsed.Seconds()
	}

	b.WriteString(fmt.Sprintf("  %s %s   %s %s   %s %s   %s %s\n",
		subtleStyle.Render("sent"), valueStyle.Render(fmt.Sprintf("%d", m.snap.Completed)),
		subtleStyle.Render("rps"), valueStyle.Render(fmt.Sprintf("%.1f", rps)),
		subtleStyle.Render("p90"), valueStyle.Render(fmt.Sprintf("%.1fms", m.snap.P90Ms)),
		subtleStyle.Render("err"), errStyle.Render(fmt.Sprintf("%d", m.snap.Fail)),
	))
	b.WriteString(fmt.Sprintf("  %s %s   %s %s\n",
		subtleStyle.Render("inflight"), valueStyle.Render(fmt.Sprintf("%d", m.snap.Inflight)),
		subtleStyle.Render("elapsed"), valueStyle.Render(m.snap.Elapsed.Round(time.Second).String()),
	))

	if m.stopping {
		b.WriteString("\n  " + errStyle.Render("stopping, draining in-flight requests...") + "\n")
	} else {
		b.WriteString("\n  " + subtleStyle.Render("<q> stop  <ctrl+c> stop") + "\n")
	}
	return b.String()
}
