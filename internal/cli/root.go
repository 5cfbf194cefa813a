// Package cli provides the command-line interface for rentwatch.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "rentwatch",
	Short: "Watch rental listing pages and email what is new",
	Long:  "rentwatch periodically scrapes configured rental listing pages, extracts candidate listings, filters them against your criteria, dedups against everything seen before, and emails a digest of new finds.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("rentwatch %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")
	rootCmd.AddCommand(versionCmd)
	cobra.OnInitialize(setupLogging)
}

func setupLogging() {
	w := os.Stderr
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
