package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "US/Pacific"

	configPathEnv   = "FEEDHERALD_CONFIG"
	githubTokenEnv  = "GITHUB_TOKEN"
	newsWebhookEnv  = "NEWS_WEBHOOK_URL"
	eventWebhookEnv = "EVENT_WEBHOOK_URL"
	gachaWebhookEnv = "GACHA_WEBHOOK_URL"
	databaseDSNEnv  = "DATABASE_DSN"
)

// Config holds every setting the application needs for one run.
type Config struct {
	Source  SourceConfig   `yaml:"source"`
	Feeds   []FeedConfig   `yaml:"feeds"`
	Posting PostingConfig  `yaml:"posting"`
	Colors  map[string]int `yaml:"colors"`
	Ledger  LedgerConfig   `yaml:"ledger"`
	Logging LoggingConfig  `yaml:"logging"`
}

// SourceConfig locates the publisher's feed repository and web endpoints.
type SourceConfig struct {
	Repo        string `yaml:"repo"`
	Token       string `yaml:"token"`
	BaseURL     string `yaml:"baseUrl"`
	HTMLBaseURL string `yaml:"htmlBaseUrl"`
	Timezone    string `yaml:"timezone"`

	location *time.Location `yaml:"-"`
}

// Location resolves the source timezone string to a time.Location.
func (s SourceConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FeedConfig binds one feed kind to its file path and delivery channel.
type FeedConfig struct {
	Kind       string `yaml:"kind"`
	Path       string `yaml:"path"`
	WebhookURL string `yaml:"webhookUrl"`
}

// PostingConfig bounds how much goes out per run.
type PostingConfig struct {
	MaxPerRun     int `yaml:"maxPerRun"`
	DelaySeconds  int `yaml:"delaySeconds"`
	MaxBodyLength int `yaml:"maxBodyLength"`
}

// Delay returns the pause inserted between consecutive deliveries.
func (p PostingConfig) Delay() time.Duration {
	return time.Duration(p.DelaySeconds) * time.Second
}

// LedgerConfig selects where delivered ids are persisted.
type LedgerConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A .env file in the working directory is honored for secrets.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Source.Token = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Ledger.DSN = v
	}

	webhookEnvs := map[string]string{
		"news":  newsWebhookEnv,
		"event": eventWebhookEnv,
		"gacha": gachaWebhookEnv,
	}
	for i := range c.Feeds {
		env, ok := webhookEnvs[c.Feeds[i].Kind]
		if !ok {
			continue
		}
		if v := os.Getenv(env); v != "" {
			c.Feeds[i].WebhookURL = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Source.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Source.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Source.Repo != "" {
		base.Source.Repo = override.Source.Repo
	}
	if override.Source.Token != "" {
		base.Source.Token = override.Source.Token
	}
	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}
	if override.Source.HTMLBaseURL != "" {
		base.Source.HTMLBaseURL = override.Source.HTMLBaseURL
	}
	if override.Source.Timezone != "" {
		base.Source.Timezone = override.Source.Timezone
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Posting.MaxPerRun > 0 {
		base.Posting.MaxPerRun = override.Posting.MaxPerRun
	}
	if override.Posting.DelaySeconds > 0 {
		base.Posting.DelaySeconds = override.Posting.DelaySeconds
	}
	if override.Posting.MaxBodyLength > 0 {
		base.Posting.MaxBodyLength = override.Posting.MaxBodyLength
	}

	if len(override.Colors) > 0 {
		base.Colors = override.Colors
	}

	if override.Ledger.Backend != "" {
		base.Ledger.Backend = override.Ledger.Backend
	}
	if override.Ledger.Path != "" {
		base.Ledger.Path = override.Ledger.Path
	}
	if override.Ledger.DSN != "" {
		base.Ledger.DSN = override.Ledger.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Source: SourceConfig{
			Repo:        "Sekai-World/sekai-master-db-en-diff",
			BaseURL:     "https://n-production-web.sekai-en.com/",
			HTMLBaseURL: "https://n-production-web.sekai-en.com/html/",
			Timezone:    defaultTimezone,
			location:    tz,
		},
		Feeds: []FeedConfig{
			{Kind: "news", Path: "userInformations.json"},
		},
		Posting: PostingConfig{
			MaxPerRun:     10,
			DelaySeconds:  2,
			MaxBodyLength: 4096,
		},
		Colors: map[string]int{
			"bug":         10066329,
			"campaign":    16733611,
			"event":       16733611,
			"gacha":       16733611,
			"information": 52411,
			"music":       16755200,
			"update":      16733577,
		},
		Ledger: LedgerConfig{
			Backend: "file",
			Path:    "log.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
