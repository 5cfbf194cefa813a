package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ppiankov/rentwatch/internal/config"
	"github.com/ppiankov/rentwatch/internal/extract"
	"github.com/ppiankov/rentwatch/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and storage health",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	_ = godotenv.Load(filepath.Join(configDir, config.DefaultEnvFile))

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		ok = false
	} else {
		htmlCount, feedCount := 0, 0
		for _, sc := range cfg.Sources {
			if sc.Kind == config.KindFeed {
				feedCount++
			} else {
				htmlCount++
			}
		}
		printCheck(true, "config.yaml (%d html sources, %d feed sources)", htmlCount, feedCount)
	}

	if cfg != nil {
		// Locale patterns
		if _, err := extract.NewFeatureExtractor(extract.Patterns{
			Currency:  cfg.Locale.Currency,
			RoomsWord: cfg.Locale.RoomsWord,
			AreaWords: cfg.Locale.AreaWords,
		}); err != nil {
			printCheck(false, "locale patterns: %v", err)
			ok = false
		} else {
			printCheck(true, "locale patterns")
		}

		// Per-source classifier patterns
		for _, sc := range cfg.Sources {
			if _, err := extract.NewClassifier(sc.DomainHint, sc.ExtraPatterns); err != nil {
				printCheck(false, "source %s: %v", sc.Name, err)
				ok = false
			}
		}

		// Database
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			printCheck(false, "database: %v", err)
			ok = false
		} else {
			counts, cerr := db.CountBySource(cmd.Context())
			_ = db.Close()
			if cerr != nil {
				printCheck(false, "database %s: %v", cfg.Storage.Path, cerr)
				ok = false
			} else {
				total := 0
				for _, c := range counts {
					total += c.Total
				}
				printCheck(true, "database %s (%d listings seen)", cfg.Storage.Path, total)
			}
		}

		// Email transport
		if err := cfg.ValidateEmail(); err != nil {
			printCheck(false, "email: %v", err)
			ok = false
		} else {
			printCheck(true, "email via %s:%d to %d recipients",
				cfg.Email.SMTPHost, cfg.Email.SMTPPort, len(cfg.Email.ToEmails))
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}
