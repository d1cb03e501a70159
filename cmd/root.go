package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"surge/internal/banner"
	"surge/internal/cli"
	"surge/internal/config"
	"surge/internal/dummy"
	"surge/internal/history"
)

var rootCmd = &cobra.Command{
	Use:   "surge",
	Short: "surge - concurrent HTTP stress tester",
	Long: `
surge fires a configurable number of HTTP requests at a target URL from
a pool of concurrent workers and reports throughput and latency stats.

Defaults can come from STRESS_* environment variables; CLI flags always
win.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(cmd.Flags())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			cmd.Usage()
			os.Exit(2)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Run(ctx, cfg)
	},
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dummyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		path, err := history.DefaultPath()
		if err != nil {
			return err
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %-6s %-40s  %d req  %.1f%% ok  %.1f rps  avg %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Config.Method,
				e.Config.URL,
				e.Summary.Completed,
				e.Summary.SuccessRate*100,
				e.Summary.RPS,
				e.Summary.AvgLatency.Round(time.Millisecond),
			)
		}
		return nil
	},
}

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local test target server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		return dummy.Start(dummy.ServerConfig{Port: port})
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
}
