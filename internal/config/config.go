package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Credentials identify the LinkedIn account used for publishing.
// The secret is passed by value into the login step and never logged.
type Credentials struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Empty reports whether either half of the credential pair is missing.
func (c Credentials) Empty() bool {
	return c.Email == "" || c.Password == ""
}

type BrowserConfig struct {
	Headless bool   `yaml:"headless"`
	Timeout  string `yaml:"timeout"`
}

func (b BrowserConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GenerationConfig controls draft composition.
type GenerationConfig struct {
	GroqAPIKey     string `yaml:"groq_api_key"`
	TogetherAPIKey string `yaml:"together_api_key"`
	GroqModel      string `yaml:"groq_model"`
	TogetherModel  string `yaml:"together_model"`
	MaxPostLength  int    `yaml:"max_post_length"`
	MinPostLength  int    `yaml:"min_post_length"`
}

// LLMEnabled returns true if at least one generation API key is configured.
func (g *GenerationConfig) LLMEnabled() bool {
	return g.GroqKey() != "" || g.TogetherKey() != ""
}

// GroqKey returns the resolved Groq key (config or env var).
func (g *GenerationConfig) GroqKey() string {
	if g.GroqAPIKey != "" {
		return g.GroqAPIKey
	}
	return os.Getenv("GROQ_API_KEY")
}

func (g *GenerationConfig) TogetherKey() string {
	if g.TogetherAPIKey != "" {
		return g.TogetherAPIKey
	}
	return os.Getenv("TOGETHER_API_KEY")
}

func (g *GenerationConfig) MaxLength() int {
	if g.MaxPostLength <= 0 {
		return 3000
	}
	return g.MaxPostLength
}

func (g *GenerationConfig) MinLength() int {
	if g.MinPostLength <= 0 {
		return 100
	}
	return g.MinPostLength
}

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TrendingConfig lists the topic sources to query.
type TrendingConfig struct {
	Sources    []string `yaml:"sources"` // "reddit", "news", "rss"
	Subreddits []string `yaml:"subreddits"`
	Feeds      []Feed   `yaml:"feeds"`
	NewsAPIKey string   `yaml:"newsapi_key"`
	FetchLimit int      `yaml:"fetch_limit"`
	UserAgent  string   `yaml:"user_agent"`
}

func (t *TrendingConfig) NewsKey() string {
	if t.NewsAPIKey != "" {
		return t.NewsAPIKey
	}
	return os.Getenv("NEWSAPI_KEY")
}

func (t *TrendingConfig) Limit() int {
	if t.FetchLimit <= 0 {
		return 5
	}
	return t.FetchLimit
}

func (t *TrendingConfig) Agent() string {
	if t.UserAgent == "" {
		return "linkedin-autoposter/1.0"
	}
	return t.UserAgent
}

func (t *TrendingConfig) SourceEnabled(name string) bool {
	for _, s := range t.Sources {
		if s == name {
			return true
		}
	}
	return false
}

type ScheduleConfig struct {
	File         string `yaml:"file"`
	PollInterval string `yaml:"poll_interval"`
}

func (s ScheduleConfig) Interval() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// Path resolves the schedule file, defaulting under the XDG data dir.
func (s ScheduleConfig) Path() string {
	if s.File != "" {
		return s.File
	}
	return filepath.Join(xdg.DataHome, "autoposter", "scheduled_posts.json")
}

type Config struct {
	LinkedIn   Credentials      `yaml:"linkedin"`
	Browser    BrowserConfig    `yaml:"browser"`
	Generation GenerationConfig `yaml:"generation"`
	Trending   TrendingConfig   `yaml:"trending"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	LogLevel   string           `yaml:"log_level,omitempty"`
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "autoposter", "config.yaml")
}

func HistoryPath() string {
	return filepath.Join(xdg.DataHome, "autoposter", "history.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the YAML config, writing the embedded defaults on first run,
// then applies .env / environment overrides for credentials and API keys.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	// Best effort: a .env in the working directory supplies credentials
	// without putting them in the config file.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				defaults.applyEnv()
				return defaults, nil
			}
			defaults.applyEnv()
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LINKEDIN_EMAIL"); v != "" {
		c.LinkedIn.Email = v
	}
	if v := os.Getenv("LINKEDIN_PASSWORD"); v != "" {
		c.LinkedIn.Password = v
	}
	if v := os.Getenv("HEADLESS_MODE"); v == "true" || v == "1" {
		c.Browser.Headless = true
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o600)
}

func validate(cfg *Config) error {
	validSources := map[string]bool{"reddit": true, "news": true, "rss": true}
	for _, s := range cfg.Trending.Sources {
		if !validSources[s] {
			return fmt.Errorf("trending source %q unknown (valid: reddit, news, rss)", s)
		}
	}
	for i, f := range cfg.Trending.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feed %d: url is required", i)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	return nil
}
