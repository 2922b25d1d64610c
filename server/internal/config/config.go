package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read at startup. They override the config file.
const (
	EnvTopic    = "NTFY_TOPIC"
	EnvURL      = "NTFY_URL"
	EnvUser     = "NTFY_USER"
	EnvPassword = "NTFY_PASS"
)

// Default values for the bridge configuration.
const (
	DefaultListenAddr = ":5001"
	DefaultNtfyURL    = "https://ntfy.sh"
	DefaultTopic      = "alerts"
	DefaultTimeout    = 10 * time.Second
)

// Config is the process-wide bridge configuration. It is built once by Load
// and must be treated as read-only afterwards.
type Config struct {
	// ListenAddr is the address the webhook server binds to (default ":5001").
	ListenAddr string `yaml:"listen_addr"`

	// Ntfy describes the notification target.
	Ntfy NtfyConfig `yaml:"ntfy"`

	// Auth configures how inbound webhook calls are authenticated.
	Auth AuthConfig `yaml:"auth"`
}

// NtfyConfig describes the ntfy server and topic notifications are posted to.
type NtfyConfig struct {
	// URL is the ntfy base URL. A trailing slash is ignored.
	URL string `yaml:"url"`

	// Topic is appended to URL to form the publish endpoint.
	Topic string `yaml:"topic"`

	// Username for HTTP Basic auth. Basic auth is only sent when both
	// Username and Password are non-empty.
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the
	// password. NTFY_PASS, when set, takes precedence.
	PasswordEnv string `yaml:"password_env"`

	// Password is resolved from the environment during Load.
	Password string `yaml:"-"`

	// Timeout bounds each outbound publish request (default 10s).
	Timeout time.Duration `yaml:"timeout"`
}

// Endpoint returns the publish URL: the base URL with trailing slashes
// stripped, joined to the topic.
func (n NtfyConfig) Endpoint() string {
	return strings.TrimRight(n.URL, "/") + "/" + n.Topic
}

// HasBasicAuth reports whether outbound requests carry HTTP Basic credentials.
func (n NtfyConfig) HasBasicAuth() bool {
	return n.Username != "" && n.Password != ""
}

// AuthConfig controls inbound webhook authentication.
type AuthConfig struct {
	// Mode is one of: bearer | none.
	Mode string `yaml:"mode"`

	// TokenEnv is the name of the environment variable holding the expected
	// bearer token. Used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`
}

// Token returns the expected bearer token resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply. Precedence, lowest first:
// defaults, config file, NTFY_* environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		Ntfy: NtfyConfig{
			URL:     DefaultNtfyURL,
			Topic:   DefaultTopic,
			Timeout: DefaultTimeout,
		},
		Auth: AuthConfig{Mode: "none"},
	}
}

// applyEnv overlays NTFY_* variables and resolves the password.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvURL); v != "" {
		cfg.Ntfy.URL = v
	}
	if v := os.Getenv(EnvTopic); v != "" {
		cfg.Ntfy.Topic = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.Ntfy.Username = v
	}
	if cfg.Ntfy.PasswordEnv != "" {
		cfg.Ntfy.Password = os.Getenv(cfg.Ntfy.PasswordEnv)
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Ntfy.Password = v
	}
}

// validate checks structural constraints on the merged configuration.
func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	u, err := url.Parse(cfg.Ntfy.URL)
	if err != nil {
		return fmt.Errorf("ntfy.url %q: %w", cfg.Ntfy.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ntfy.url %q: want an absolute http(s) URL", cfg.Ntfy.URL)
	}
	if cfg.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy.topic must not be empty")
	}
	if strings.Contains(cfg.Ntfy.Topic, "/") {
		return fmt.Errorf("ntfy.topic %q must not contain '/'", cfg.Ntfy.Topic)
	}
	if cfg.Ntfy.Timeout <= 0 {
		return fmt.Errorf("ntfy.timeout must be positive")
	}
	switch cfg.Auth.Mode {
	case "bearer":
		if cfg.Auth.Token() == "" {
			return fmt.Errorf("auth.mode bearer requires token_env naming a non-empty environment variable")
		}
	case "none", "":
	default:
		return fmt.Errorf("auth.mode %q unknown: want bearer|none", cfg.Auth.Mode)
	}
	return nil
}
