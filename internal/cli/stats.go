package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/rentwatch/internal/config"
	"github.com/ppiankov/rentwatch/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-source seen-listing totals",
	RunE:  statsAction,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	counts, err := db.CountBySource(cmd.Context())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if len(counts) == 0 {
		fmt.Fprintln(os.Stdout, "No listings recorded yet. Run 'rentwatch scan' first.")
		return nil
	}

	maxName := len("Source")
	for _, c := range counts {
		if len(c.Source) > maxName {
			maxName = len(c.Source)
		}
	}

	total := 0
	fmt.Fprintf(os.Stdout, "  %-*s  %8s  %s\n", maxName, "Source", "Seen", "Last new listing")
	for _, c := range counts {
		total += c.Total
		fmt.Fprintf(os.Stdout, "  %-*s  %8s  %s\n",
			maxName, c.Source, humanize.Comma(int64(c.Total)), humanize.Time(c.LastSeen))
	}
	fmt.Fprintf(os.Stdout, "\n%s listings seen across %d sources.\n",
		humanize.Comma(int64(total)), len(counts))

	return nil
}
