package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ppiankov/rentwatch/internal/config"
	"github.com/ppiankov/rentwatch/internal/digest"
)

var previewFormat string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the digest without sending email or recording listings",
	RunE:  previewAction,
}

func init() {
	previewCmd.Flags().StringVar(&previewFormat, "format", "terminal", "output format: terminal, markdown, html")
	rootCmd.AddCommand(previewCmd)
}

func previewAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	input, err := collectDigest(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}

	var formatter digest.Formatter
	switch previewFormat {
	case "terminal", "":
		formatter = digest.NewTerminal(isatty.IsTerminal(os.Stdout.Fd()))
	case "markdown", "md":
		formatter = digest.NewMarkdown()
	case "html":
		formatter = digest.NewHTML(cfg.Digest.SubjectPrefix)
	default:
		return fmt.Errorf("unknown format %q (want terminal, markdown, or html)", previewFormat)
	}
	return formatter.Format(os.Stdout, *input)
}
