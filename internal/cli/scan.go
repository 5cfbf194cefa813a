package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ppiankov/rentwatch/internal/config"
	"github.com/ppiankov/rentwatch/internal/digest"
	"github.com/ppiankov/rentwatch/internal/extract"
	"github.com/ppiankov/rentwatch/internal/fetch"
	"github.com/ppiankov/rentwatch/internal/mail"
	"github.com/ppiankov/rentwatch/internal/source"
	"github.com/ppiankov/rentwatch/internal/store"
)

var (
	scanDryRun  bool
	scanNoEmail bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch all sources and email newly discovered listings",
	RunE:  scanAction,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "extract and report without touching the store or sending email")
	scanCmd.Flags().BoolVar(&scanNoEmail, "no-email", false, "record listings as seen but print the digest instead of emailing")
	rootCmd.AddCommand(scanCmd)
}

func scanAction(cmd *cobra.Command, _ []string) error {
	// Optional .env beside the config, for the SMTP app password.
	_ = godotenv.Load(filepath.Join(configDir, config.DefaultEnvFile))

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !scanDryRun && !scanNoEmail {
		if err := cfg.ValidateEmail(); err != nil {
			return fmt.Errorf("email config: %w", err)
		}
	}

	input, err := collectDigest(cmd.Context(), cfg, scanDryRun)
	if err != nil {
		return err
	}

	if scanDryRun || scanNoEmail {
		color := isatty.IsTerminal(os.Stdout.Fd())
		return digest.NewTerminal(color).Format(os.Stdout, *input)
	}

	var body strings.Builder
	if err := digest.NewHTML(cfg.Digest.SubjectPrefix).Format(&body, *input); err != nil {
		return err
	}

	// Run time in the subject keeps mail clients from threading runs
	// together.
	subject := fmt.Sprintf("%s – %s", cfg.Digest.SubjectPrefix, input.Date.Format("02.01.2006 15:04"))

	sender, err := mail.New(mail.Config{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		To:        cfg.Email.ToEmails,
		Password:  cfg.Email.Password,
	})
	if err != nil {
		return err
	}
	if err := sender.Send(cmd.Context(), subject, body.String()); err != nil {
		return err
	}

	slog.Info("digest sent",
		"new_listings", input.TotalNew(),
		"warnings", len(input.Warnings),
		"recipients", len(cfg.Email.ToEmails))
	return nil
}

// collectDigest runs the pipeline over every configured source. When
// dryRun is set the seen store is not opened and nothing is recorded.
// Per-source fetch errors become digest warnings; everything else is
// fatal.
func collectDigest(ctx context.Context, cfg *config.Config, dryRun bool) (*digest.Input, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fx, err := extract.NewFeatureExtractor(extract.Patterns{
		Currency:  cfg.Locale.Currency,
		RoomsWord: cfg.Locale.RoomsWord,
		AreaWords: cfg.Locale.AreaWords,
	})
	if err != nil {
		return nil, fmt.Errorf("compile locale patterns: %w", err)
	}

	filter := extract.NewFilter(extract.Criteria{
		MustInclude: cfg.Filters.MustIncludeKeywords,
		Exclude:     cfg.Filters.ExcludeKeywords,
		MinRooms:    cfg.Filters.MinRooms,
		MinSize:     cfg.Filters.MinSizeSqm,
		MaxPrice:    cfg.Filters.MaxPriceNis,
	}, fx)

	client := fetch.New(cfg.Fetch.Timeout.Duration, cfg.Fetch.UserAgent)

	var db *store.Store
	if !dryRun {
		db, err = store.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = db.Close() }()
	}

	var (
		groups   []digest.Group
		warnings []string
	)

	for _, sc := range cfg.Sources {
		src, err := buildSource(sc, client, filter)
		if err != nil {
			return nil, err
		}

		listings, err := src.Fetch(ctx)
		if err != nil {
			slog.Warn("fetch failed", "source", sc.Name, "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", sc.Name, err))
		}

		fresh := listings
		if db != nil {
			fresh, err = markNewListings(ctx, db, sc.Name, listings)
			if err != nil {
				return nil, err
			}
		}

		groups = append(groups, digest.Group{Source: sc.Name, Listings: fresh})
	}

	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &digest.Input{
		Date:     time.Now().In(loc),
		Groups:   groups,
		Warnings: warnings,
	}, nil
}

func buildSource(sc config.SourceConfig, client *fetch.Client, filter *extract.Filter) (source.Source, error) {
	classifier, err := extract.NewClassifier(sc.DomainHint, sc.ExtraPatterns)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", sc.Name, err)
	}
	switch sc.Kind {
	case config.KindFeed:
		return source.NewFeed(sc.Name, sc.URL, client, classifier, filter)
	default:
		return source.NewHTML(sc.Name, sc.URL, client, extract.NewExtractor(classifier, filter))
	}
}

// markNewListings records the batch in the seen store and keeps only
// the first-time listings, preserving order.
func markNewListings(ctx context.Context, db *store.Store, sourceName string, listings []extract.Listing) ([]extract.Listing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	keys := make([]string, len(listings))
	for i, l := range listings {
		keys[i] = l.URL
	}

	newKeys, err := db.MarkNew(ctx, sourceName, keys)
	if err != nil {
		return nil, fmt.Errorf("record seen listings for %s: %w", sourceName, err)
	}

	isNew := make(map[string]bool, len(newKeys))
	for _, k := range newKeys {
		isNew[k] = true
	}

	var fresh []extract.Listing
	for _, l := range listings {
		if isNew[l.URL] {
			fresh = append(fresh, l)
		}
	}
	return fresh, nil
}
