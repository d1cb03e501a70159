// Package report renders the final run summary for the console and the
// optional timestamped log file.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"surge/internal/config"
	"surge/internal/stats"
)

const divider = "======================================================================"

// Render formats the summary block. The same text goes to the console
// and, with --report, to the log file.
func Render(cfg config.Config, s stats.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "STRESS TEST RESULTS\n")
	fmt.Fprintf(&b, "%s\n", divider)
	fmt.Fprintf(&b, "Target URL     : %s\n", cfg.URL)
	fmt.Fprintf(&b, "Method         : %s\n", cfg.Method)
	fmt.Fprintf(&b, "Concurrency    : %d (simulated users)\n", cfg.Concurrency)
	fmt.Fprintf(&b, "Requested      : %s\n", requestedLabel(cfg))
	fmt.Fprintf(&b, "Completed      : %d\n", s.Completed)
	fmt.Fprintf(&b, "Success        : %d (%.1f%%)\n", s.Success, s.SuccessRate*100)
	fmt.Fprintf(&b, "Failures       : %d\n", s.Fail)
	if len(s.Statuses) > 0 {
		fmt.Fprintf(&b, "Status codes   : %s\n", statusLine(s.Statuses))
	}
	fmt.Fprintf(&b, "Duration       : %.2fs\n", s.Duration.Seconds())
	fmt.Fprintf(&b, "Requests/s     : %.2f\n", s.RPS)
	fmt.Fprintf(&b, "\nLATENCY (success only)\n")
	fmt.Fprintf(&b, "   Min : %s\n", fmtLatency(s.MinLatency))
	fmt.Fprintf(&b, "   Avg : %s\n", fmtLatency(s.AvgLatency))
	fmt.Fprintf(&b, "   Max : %s\n", fmtLatency(s.MaxLatency))
	fmt.Fprintf(&b, "   P50 : %s\n", fmtLatency(s.P50))
	fmt.Fprintf(&b, "   P90 : %s\n", fmtLatency(s.P90))
	fmt.Fprintf(&b, "   P95 : %s\n", fmtLatency(s.P95))
	fmt.Fprintf(&b, "   P99 : %s\n", fmtLatency(s.P99))
	fmt.Fprintf(&b, "\nEstimated concurrent users: %.2f\n", s.Users)

	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "\nFAILURE SUMMARY\n")
		for _, line := range errorLines(s.Errors) {
			fmt.Fprintf(&b, "   %s\n", line)
		}
	}
	fmt.Fprintf(&b, "%s\n", divider)
	return b.String()
}

func requestedLabel(cfg config.Config) string {
	if !cfg.Bounded() {
		return "unlimited (paranoid)"
	}
	return fmt.Sprintf("%d", cfg.Requests)
}

func statusLine(statuses map[int]int64) string {
	codes := make([]int, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%d:%d", code, statuses[code]))
	}
	return strings.Join(parts, " ")
}

func errorLines(errs map[string]int64) []string {
	msgs := make([]string, 0, len(errs))
	for msg := range errs {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)

	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%d x %s", errs[msg], msg))
	}
	return lines
}

func fmtLatency(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
}

// WriteFile persists the rendered summary to a timestamped log file in
// the working directory and returns its name.
func WriteFile(summary string) (string, error) {
	name := fmt.Sprintf("stress_test_%s.log", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(name, []byte(summary), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return name, nil
}
