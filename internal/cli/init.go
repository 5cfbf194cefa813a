package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rentwatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	envPath := filepath.Join(configDir, config.DefaultEnvFile+".example")
	wrote, err = writeIfNotExists(envPath, []byte(exampleEnv))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	if created == 0 {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s with %d config files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# rentwatch configuration

sources:
  - name: Yad2 Tel Aviv
    url: https://www.yad2.co.il/realestate/rent?city=5000
    domain_hint: yad2.co.il
  # Feed sources run items through the same filters:
  # - name: Saved Search
  #   url: https://example.com/search.rss
  #   kind: feed
  #   domain_hint: example.com

filters:
  must_include_keywords: []
  exclude_keywords:
    - "שותפים"
  min_rooms: 2
  min_size_sqm: 50
  max_price_nis: 6500

# locale:
#   currency: "₪"
#   rooms_word: "חדר"
#   area_words: ["מ\"ר", "מטר"]

fetch:
  timeout: 30s

storage:
  path: .rentwatch/rentwatch.db

digest:
  timezone: Asia/Jerusalem

email:
  smtp_host: smtp.gmail.com
  smtp_port: 587
  from_name: Rental Bot
  from_email: bot@example.com
  to_emails:
    - me@example.com
  password_env: SMTP_APP_PASSWORD
`

const exampleEnv = `# Copy to .env and fill in. Loaded automatically by 'rentwatch scan'.
SMTP_APP_PASSWORD=
`
