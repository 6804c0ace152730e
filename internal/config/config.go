package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"lspwiki/internal/paths"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. LSPWIKI_LSP_REQUESTTIMEOUTMS=5000.
const EnvPrefix = "LSPWIKI"

// Config represents the complete lspwiki configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Lsp       LspConfig       `json:"lsp" mapstructure:"lsp"`
	Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// LspConfig contains language server transport configuration
type LspConfig struct {
	Enabled bool                    `json:"enabled" mapstructure:"enabled"`
	Servers map[string]LspServerCfg `json:"servers" mapstructure:"servers"`

	// HandshakeTimeoutMs bounds the initialize exchange
	HandshakeTimeoutMs int `json:"handshakeTimeoutMs" mapstructure:"handshakeTimeoutMs"`
	// RequestTimeoutMs bounds every other request
	RequestTimeoutMs int `json:"requestTimeoutMs" mapstructure:"requestTimeoutMs"`
	// SettleTimeoutMs bounds the wait for a server's readiness signal after didOpen
	SettleTimeoutMs int `json:"settleTimeoutMs" mapstructure:"settleTimeoutMs"`
	// PollAttempts is how many times an empty symbol result is re-requested
	PollAttempts int `json:"pollAttempts" mapstructure:"pollAttempts"`
	// ShutdownTimeoutMs bounds the wait for process exit
	ShutdownTimeoutMs int `json:"shutdownTimeoutMs" mapstructure:"shutdownTimeoutMs"`
	// HoverDocs fills top-level symbol documentation from hover requests
	HoverDocs bool `json:"hoverDocs" mapstructure:"hoverDocs"`
	// MaxSymbolDepth bounds nesting accepted from documentSymbol results
	MaxSymbolDepth int `json:"maxSymbolDepth" mapstructure:"maxSymbolDepth"`
}

// LspServerCfg contains configuration for a single LSP server
type LspServerCfg struct {
	Command string   `json:"command" mapstructure:"command"`
	Args    []string `json:"args" mapstructure:"args"`
	// Install is a human hint printed when the command is missing
	Install string `json:"install,omitempty" mapstructure:"install"`
}

// DiscoveryConfig controls which source files are analyzed
type DiscoveryConfig struct {
	Exclude          []string `json:"exclude" mapstructure:"exclude"`
	RespectGitignore bool     `json:"respectGitignore" mapstructure:"respectGitignore"`
	MaxFileSizeBytes int      `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// DefaultServers returns the built-in server launch table keyed by server name.
func DefaultServers() map[string]LspServerCfg {
	return map[string]LspServerCfg{
		"typescript-language-server": {
			Command: "typescript-language-server",
			Args:    []string{"--stdio"},
			Install: "npm install -g typescript-language-server typescript",
		},
		"pylsp": {
			Command: "pylsp",
			Install: "pip install python-lsp-server",
		},
		"gopls": {
			Command: "gopls",
			Args:    []string{"serve"},
			Install: "go install golang.org/x/tools/gopls@latest",
		},
		"rust-analyzer": {
			Command: "rust-analyzer",
			Install: "rustup component add rust-analyzer",
		},
		"clangd": {
			Command: "clangd",
		},
		"jdtls": {
			Command: "jdtls",
		},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Lsp: LspConfig{
			Enabled:            true,
			Servers:            DefaultServers(),
			HandshakeTimeoutMs: 10000,
			RequestTimeoutMs:   10000,
			SettleTimeoutMs:    100,
			PollAttempts:       2,
			ShutdownTimeoutMs:  2000,
			MaxSymbolDepth:     64,
		},
		Discovery: DiscoveryConfig{
			Exclude:          []string{},
			RespectGitignore: true,
			MaxFileSizeBytes: 1000000,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			MaxSize: "10MB",
		},
	}
}

// LoadConfig loads configuration from <repoRoot>/.lspwiki/config.{json,yaml,toml}
// and LSPWIKI_* environment variables. A missing file yields the defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath(paths.ConfigDir(repoRoot))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}

	// A user-provided servers table extends the defaults instead of replacing them.
	servers := DefaultServers()
	for name, s := range cfg.Lsp.Servers {
		servers[name] = s
	}
	cfg.Lsp.Servers = servers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults registers every scalar key so AutomaticEnv can override it.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("lsp.enabled", cfg.Lsp.Enabled)
	v.SetDefault("lsp.handshakeTimeoutMs", cfg.Lsp.HandshakeTimeoutMs)
	v.SetDefault("lsp.requestTimeoutMs", cfg.Lsp.RequestTimeoutMs)
	v.SetDefault("lsp.settleTimeoutMs", cfg.Lsp.SettleTimeoutMs)
	v.SetDefault("lsp.pollAttempts", cfg.Lsp.PollAttempts)
	v.SetDefault("lsp.shutdownTimeoutMs", cfg.Lsp.ShutdownTimeoutMs)
	v.SetDefault("lsp.hoverDocs", cfg.Lsp.HoverDocs)
	v.SetDefault("lsp.maxSymbolDepth", cfg.Lsp.MaxSymbolDepth)
	v.SetDefault("discovery.exclude", cfg.Discovery.Exclude)
	v.SetDefault("discovery.respectGitignore", cfg.Discovery.RespectGitignore)
	v.SetDefault("discovery.maxFileSizeBytes", cfg.Discovery.MaxFileSizeBytes)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.maxSize", cfg.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", cfg.Logging.MaxBackups)
}

// Save writes the configuration to <repoRoot>/.lspwiki/config.json
func (c *Config) Save(repoRoot string) error {
	dir := paths.ConfigDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Lsp.HandshakeTimeoutMs <= 0 {
		return &ConfigError{Field: "lsp.handshakeTimeoutMs", Message: "must be positive"}
	}
	if c.Lsp.RequestTimeoutMs <= 0 {
		return &ConfigError{Field: "lsp.requestTimeoutMs", Message: "must be positive"}
	}
	if c.Lsp.SettleTimeoutMs < 0 || c.Lsp.PollAttempts < 0 {
		return &ConfigError{Field: "lsp.settleTimeoutMs", Message: "must not be negative"}
	}
	if c.Lsp.MaxSymbolDepth <= 0 {
		return &ConfigError{Field: "lsp.maxSymbolDepth", Message: "must be positive"}
	}
	for name, s := range c.Lsp.Servers {
		if s.Command == "" {
			return &ConfigError{Field: "lsp.servers." + name, Message: "command is required"}
		}
	}
	return nil
}

// HandshakeTimeout returns the initialize timeout as a duration
func (l LspConfig) HandshakeTimeout() time.Duration {
	return time.Duration(l.HandshakeTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a duration
func (l LspConfig) RequestTimeout() time.Duration {
	return time.Duration(l.RequestTimeoutMs) * time.Millisecond
}

// SettleTimeout returns the readiness wait bound as a duration
func (l LspConfig) SettleTimeout() time.Duration {
	return time.Duration(l.SettleTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the process exit wait bound as a duration
func (l LspConfig) ShutdownTimeout() time.Duration {
	return time.Duration(l.ShutdownTimeoutMs) * time.Millisecond
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
