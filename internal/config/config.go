package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/FranksOps/scout/internal/fingerprint"
)

// ErrMissingSecret is returned by Validate when Google credentials are absent.
var ErrMissingSecret = errors.New("missing secret")

// EnvPrefix prefixes every setting read from the environment except the
// Google credentials, which use their conventional names.
const EnvPrefix = "SCOUT"

// SearchPaths are the directories searched for a config file when none is
// given explicitly.
var SearchPaths = []string{".", ".streamlit"}

// fileNames are tried in order in every search path; later files override
// earlier ones.
var fileNames = []string{"scout.yaml", "secrets.toml"}

// Config holds every runtime setting.
type Config struct {
	GoogleAPIKey string       `mapstructure:"google_api_key"`
	GoogleCSEID  string       `mapstructure:"google_cse_id"`
	Search       SearchConfig `mapstructure:"search"`
	Fetch        FetchConfig  `mapstructure:"fetch"`
	MetricsPort  int          `mapstructure:"metrics_port"`
}

// SearchConfig configures the Custom Search API client.
type SearchConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Language string        `mapstructure:"language"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// FetchConfig configures result page fetching.
type FetchConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	Fingerprint     string        `mapstructure:"fingerprint"`
	ProxyFile       string        `mapstructure:"proxy_file"`
	UserAgents      []string      `mapstructure:"user_agents"`
	RandomUserAgent bool          `mapstructure:"random_user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	MaxRedirects    int           `mapstructure:"max_redirects"`
	CookieJar       bool          `mapstructure:"cookie_jar"`
	RespectRobots   bool          `mapstructure:"respect_robots"`
	RobotsAgent     string        `mapstructure:"robots_agent"`
}

// New returns a viper instance with defaults and environment bindings in
// place. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("google_api_key", "")
	v.SetDefault("google_cse_id", "")
	v.SetDefault("metrics_port", 0)

	v.SetDefault("search.endpoint", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.language", "th")
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.timeout", 30*time.Second)

	v.SetDefault("fetch.timeout", 5*time.Second)
	v.SetDefault("fetch.fingerprint", string(fingerprint.ProfileGo))
	v.SetDefault("fetch.proxy_file", "")
	v.SetDefault("fetch.user_agents", []string{})
	v.SetDefault("fetch.random_user_agent", false)
	v.SetDefault("fetch.accept_language", "th,en;q=0.8")
	v.SetDefault("fetch.max_body_bytes", 5<<20)
	v.SetDefault("fetch.max_redirects", 0)
	v.SetDefault("fetch.cookie_jar", false)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.robots_agent", "scout")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("google_api_key", "GOOGLE_API_KEY", EnvPrefix+"_GOOGLE_API_KEY")
	_ = v.BindEnv("google_cse_id", "GOOGLE_CSE_ID", EnvPrefix+"_GOOGLE_CSE_ID")

	return v
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration. When file is empty the SearchPaths are
// scanned; an explicit file must exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		for _, dir := range SearchPaths {
			for _, name := range fileNames {
				p := filepath.Join(dir, name)
				if _, err := os.Stat(p); err != nil {
					continue
				}
				v.SetConfigFile(p)
				if err := v.MergeInConfig(); err != nil {
					return nil, fmt.Errorf("read config %s: %w", p, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings a search run cannot do without.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.GoogleAPIKey) == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if strings.TrimSpace(c.GoogleCSEID) == "" {
		missing = append(missing, "GOOGLE_CSE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}

	if _, err := fingerprint.ParseProfile(c.Fetch.Fingerprint); err != nil {
		return err
	}
	if c.Search.Timeout <= 0 || c.Fetch.Timeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	return nil
}
