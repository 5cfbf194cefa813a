// Package config loads and validates the rentwatch YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultEnvFile     = ".env"
	DefaultStoragePath = ".rentwatch/rentwatch.db"
	DefaultTimezone    = "Asia/Jerusalem"
	DefaultFetchTime   = 30 * time.Second

	// Source kinds.
	KindHTML = "html"
	KindFeed = "feed"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Sources []SourceConfig `yaml:"sources"`
	Filters FiltersConfig  `yaml:"filters"`
	Locale  LocaleConfig   `yaml:"locale"`
	Fetch   FetchConfig    `yaml:"fetch"`
	Storage StorageConfig  `yaml:"storage"`
	Digest  DigestConfig   `yaml:"digest"`
	Email   EmailConfig    `yaml:"email"`
}

// SourceConfig describes one listing page (or feed) to watch.
type SourceConfig struct {
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Kind          string   `yaml:"kind"`        // html (default) or feed
	DomainHint    string   `yaml:"domain_hint"` // substring a listing URL's host must contain
	ExtraPatterns []string `yaml:"extra_patterns"`
}

type FiltersConfig struct {
	MustIncludeKeywords []string `yaml:"must_include_keywords"`
	ExcludeKeywords     []string `yaml:"exclude_keywords"`
	MinRooms            float64  `yaml:"min_rooms"`
	MinSizeSqm          int      `yaml:"min_size_sqm"`
	MaxPriceNis         int      `yaml:"max_price_nis"`
}

// LocaleConfig overrides the marker tokens used for numeric extraction.
// Empty fields keep the Hebrew defaults.
type LocaleConfig struct {
	Currency  string   `yaml:"currency"`
	RoomsWord string   `yaml:"rooms_word"`
	AreaWords []string `yaml:"area_words"`
}

type FetchConfig struct {
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type DigestConfig struct {
	Timezone      string `yaml:"timezone"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type EmailConfig struct {
	SMTPHost    string   `yaml:"smtp_host"`
	SMTPPort    int      `yaml:"smtp_port"`
	FromName    string   `yaml:"from_name"`
	FromEmail   string   `yaml:"from_email"`
	ToEmails    []string `yaml:"to_emails"`
	PasswordEnv string   `yaml:"password_env"`

	// Resolved from the env var at load time.
	Password string `yaml:"-"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars,
// and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Sources {
		if cfg.Sources[i].Kind == "" {
			cfg.Sources[i].Kind = KindHTML
		}
	}
	if cfg.Fetch.Timeout.Duration == 0 {
		cfg.Fetch.Timeout.Duration = DefaultFetchTime
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Digest.Timezone == "" {
		cfg.Digest.Timezone = DefaultTimezone
	}
	if cfg.Digest.SubjectPrefix == "" {
		cfg.Digest.SubjectPrefix = "🏠 דירות חדשות"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "Rental Bot"
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Email.PasswordEnv != "" {
		cfg.Email.Password = os.Getenv(cfg.Email.PasswordEnv)
	}
}

func validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one source must be configured")
	}

	names := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		names[src.Name] = true

		u, err := url.Parse(src.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("sources[%d] (%s): url %q is not an absolute URL", i, src.Name, src.URL)
		}

		switch src.Kind {
		case KindHTML, KindFeed:
			// valid
		default:
			return fmt.Errorf("sources[%d] (%s): unknown kind %q (want html or feed)", i, src.Name, src.Kind)
		}
	}

	if _, err := time.LoadLocation(cfg.Digest.Timezone); err != nil {
		return fmt.Errorf("digest.timezone: %w", err)
	}

	return nil
}

// ValidateEmail checks that the email section is complete enough to
// send. It is deliberately not part of Load so dry runs work without
// transport settings.
func (cfg *Config) ValidateEmail() error {
	if cfg.Email.SMTPHost == "" {
		return errors.New("email.smtp_host is required")
	}
	if cfg.Email.FromEmail == "" {
		return errors.New("email.from_email is required")
	}
	if len(cfg.Email.ToEmails) == 0 {
		return errors.New("email.to_emails: at least one recipient is required")
	}
	if cfg.Email.Password == "" {
		if cfg.Email.PasswordEnv == "" {
			return errors.New("email.password_env is required")
		}
		return fmt.Errorf("email: env var %s is empty", cfg.Email.PasswordEnv)
	}
	return nil
}
