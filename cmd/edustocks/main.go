// edustocks is the EduStocks client: paper trading, lessons and the AI
// trainer against an EduStocks backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atharvakonge/edustocks/internal/config"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// Global client state, built before every command
var app *client

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "edustocks",
	Short: "EduStocks - learn investing with paper trading",
	Long: `EduStocks client.

Trade a simulated portfolio at live quotes, work through lessons, and
practise with the AI trainer. Point EDUSTOCKS_API_URL at a backend; the
sandbox in cmd/api speaks the same API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		if url, _ := cmd.Flags().GetString("api"); url != "" {
			cfg.APIURL = url
		}
		app, err = newClient(cfg)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "backend API base URL (overrides EDUSTOCKS_API_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(stocksCmd, portfolioCmd, buyCmd, sellCmd, watchCmd)
	rootCmd.AddCommand(lessonsCmd, lessonCmd, progressCmd, dashboardCmd, trainerCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// no config needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edustocks %s (%s)\n", version, commit)
	},
}
