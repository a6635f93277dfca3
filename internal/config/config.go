// Package config loads the settings of both commands from an optional YAML file
// and SCHEDULER_ prefixed environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SCHEDULER_HTTP_PORT.
const EnvPrefix = "SCHEDULER"

// Config captures the settings of the board API and of the dev backend.
type Config struct {
	Env               string        // local, development, production
	HTTPPort          int           // board API port
	BackendBaseURL    string        // base URL of the backend API
	BackendTimeout    time.Duration // per request timeout of the backend client
	RefreshInterval   time.Duration // periodic snapshot refresh, 0 disables it
	SessionTTL        time.Duration
	SessionDSN        string // sqlite DSN of the session store
	AdminEmail        string
	AdminPasswordHash string // argon2id PHC string
	Backend           BackendConfig
}

// BackendConfig holds the dev backend settings.
type BackendConfig struct {
	HTTPPort  int
	SQLiteDSN string
}

// Load reads the board API configuration. The administrator credentials are required.
func Load() (Config, error) {
	return load(true)
}

// LoadBackend reads the configuration used by the dev backend command.
func LoadBackend() (Config, error) {
	return load(false)
}

func load(requireAdmin bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "local")
	v.SetDefault("http_port", "8080")
	v.SetDefault("backend_base_url", "http://localhost:3000")
	v.SetDefault("backend_timeout", "10s")
	v.SetDefault("refresh_interval", "0s")
	v.SetDefault("session_ttl", "12h")
	v.SetDefault("session_dsn", ":memory:")
	v.SetDefault("backend.http_port", "3000")
	v.SetDefault("backend.sqlite_dsn", "file:backend.db")

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config error: %w", err)
		}
	}

	p := parser{v: v}
	cfg := Config{
		Env:               strings.ToLower(p.text("env")),
		HTTPPort:          p.port("http_port"),
		BackendBaseURL:    p.baseURL("backend_base_url"),
		BackendTimeout:    p.duration("backend_timeout", false),
		RefreshInterval:   p.duration("refresh_interval", true),
		SessionTTL:        p.duration("session_ttl", false),
		SessionDSN:        p.text("session_dsn"),
		AdminEmail:        strings.ToLower(p.text("admin_email")),
		AdminPasswordHash: p.text("admin_password_hash"),
		Backend: BackendConfig{
			HTTPPort:  p.port("backend.http_port"),
			SQLiteDSN: p.text("backend.sqlite_dsn"),
		},
	}

	if requireAdmin {
		if cfg.AdminEmail == "" {
			p.missing = append(p.missing, envName("admin_email"))
		}
		if cfg.AdminPasswordHash == "" {
			p.missing = append(p.missing, envName("admin_password_hash"))
		} else if !strings.HasPrefix(cfg.AdminPasswordHash, "$argon2id$") {
			p.invalid = append(p.invalid, envName("admin_password_hash"))
		}
	}
	if cfg.SessionDSN == "" {
		p.missing = append(p.missing, envName("session_dsn"))
	}

	if len(p.missing) > 0 {
		return Config{}, fmt.Errorf("missing required settings: %s", strings.Join(p.missing, ", "))
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid settings: %s", strings.Join(p.invalid, ", "))
	}
	return cfg, nil
}

// parser collects the names of invalid settings while reading them.
type parser struct {
	v       *viper.Viper
	missing []string
	invalid []string
}

func (p *parser) text(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) port(key string) int {
	port, err := strconv.Atoi(p.text(key))
	if err != nil || port <= 0 || port > 65535 {
		p.invalid = append(p.invalid, envName(key))
		return 0
	}
	return port
}

func (p *parser) duration(key string, allowZero bool) time.Duration {
	d, err := time.ParseDuration(p.text(key))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		p.invalid = append(p.invalid, envName(key))
		return 0
	}
	return d
}

func (p *parser) baseURL(key string) string {
	raw := strings.TrimRight(p.text(key), "/")
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		p.invalid = append(p.invalid, envName(key))
		return ""
	}
	return raw
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
