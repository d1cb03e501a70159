// Package cli drives a load test run end to end: live progress (TUI on
// a terminal, a plain ticker line otherwise), then summary, optional
// report file and history entry.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"surge/internal/config"
	"surge/internal/history"
	"surge/internal/report"
	"surge/internal/runner"
	"surge/internal/stats"
	"surge/internal/tui"
)

// Run executes the load test and blocks until the summary has printed.
// Cancelling ctx (SIGINT/SIGTERM) stops dispatch and summarizes the
// partial run.
func Run(ctx context.Context, cfg config.Config) error {
	updates := make(runner.SnapshotChan, 100)
	r := runner.New(cfg, updates)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan stats.Summary, 1)
	go func() {
		done <- r.Run(runCtx)
	}()

	var s stats.Summary
	if useTUI(cfg) {
		m := tui.NewModel(cfg, updates, done, cancel)
		out, err := tea.NewProgram(m).Run()
		if err != nil {
			return fmt.Errorf("running progress view: %w", err)
		}
		if fin, ok := out.(tui.Model); ok && fin.Summary != nil {
			s = *fin.Summary
		} else {
			cancel()
			s = <-done
		}
	} else {
		printHeader(cfg)
		s = watch(cfg, updates, done)
	}

	fmt.Print(report.Render(cfg, s))
	finish(cfg, r, s)
	return nil
}

func useTUI(cfg config.Config) bool {
	return !cfg.NoTUI && isatty.IsTerminal(os.Stdout.Fd())
}

// watch renders the headless progress line until the run drains.
func watch(cfg config.Config, updates runner.SnapshotChan, done <-chan stats.Summary) stats.Summary {
	for {
		select {
		case s := <-done:
			fmt.Println()
			fmt.Println()
			return s
		case snap := <-updates:
			printProgress(cfg, snap)
		}
	}
}

func printHeader(cfg config.Config) {
	fmt.Printf("\nSURGE STRESS TEST\n")
	fmt.Printf("======================================================================\n")
	fmt.Printf("Target URL  : %s\n", cfg.URL)
	fmt.Printf("Method      : %s\n", cfg.Method)
	fmt.Printf("Requests    : %s\n", requestsLabel(cfg))
	fmt.Printf("Concurrency : %d\n", cfg.Concurrency)
	fmt.Printf("Timeout     : %s\n", cfg.Timeout)
	fmt.Printf("======================================================================\n\n")
}

func requestsLabel(cfg config.Config) string {
	if !cfg.Bounded() {
		return "unlimited (paranoid, ctrl+c to stop)"
	}
	return fmt.Sprintf("%d", cfg.Requests)
}

func printProgress(cfg config.Config, snap runner.Snapshot) {
	rps := 0.0
	if snap.Elapsed > 0 {
		rps = float64(snap.Completed) / snap.Elapsed.Seconds()
	}

	if !cfg.Bounded() {
		fmt.Printf("\r%s | Sent: %d | Inf: %3d | RPS: %.1f | OK: %d | Err: %d",
			snap.Elapsed.Round(time.Second),
			snap.Completed, snap.Inflight, rps, snap.Success, snap.Fail)
		return
	}

	pct := float64(snap.Completed) / float64(cfg.Requests)
	if pct > 1.0 {
		pct = 1.0
	}
	fmt.Printf("\r%s %3.0f%% | %d/%d | Inf: %3d | RPS: %.1f | OK: %d | Err: %d",
		progressBar(pct, 20), pct*100,
		snap.Completed, cfg.Requests,
		snap.Inflight, rps, snap.Success, snap.Fail)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

// finish handles the optional report file and the history entry. Both
// are best-effort: failures warn and never mask the printed summary.
func finish(cfg config.Config, r *runner.Runner, s stats.Summary) {
	if cfg.Report {
		name, err := report.WriteFile(report.Render(cfg, s))
		if err != nil {
			fmt.Printf("warning: %v\n", err)
		} else {
			fmt.Printf("Report saved to: %s\n", name)
		}
	}
	saveHistory(cfg, r, s)
}

func saveHistory(cfg config.Config, r *runner.Runner, s stats.Summary) {
	path, err := history.DefaultPath()
	if err != nil {
		fmt.Printf("warning: history disabled: %v\n", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Printf("warning: history disabled: %v\n", err)
		return
	}
	defer store.Close()

	err = store.Save(history.Entry{
		ID:        r.ID(),
		Timestamp: time.Now(),
		Config:    cfg,
		Summary:   s,
	})
	if err != nil {
		fmt.Printf("warning: saving history: %v\n", err)
	}
}
