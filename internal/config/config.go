// Package config loads the tool configuration from .nsprefix/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// Dir holds the configuration file and the journal.
	Dir = ".nsprefix"

	// EnvPrefix is prepended to environment overrides, e.g. NSPREFIX_WORKERS.
	EnvPrefix = "NSPREFIX"

	currentVersion = 1
)

// Config is the complete tool configuration.
type Config struct {
	Version         int    `json:"version" mapstructure:"version"`
	VendorPrefix    string `json:"vendorPrefix" mapstructure:"vendorPrefix"`
	RootNamespace   string `json:"rootNamespace" mapstructure:"rootNamespace"`
	RewriteComments bool   `json:"rewriteComments" mapstructure:"rewriteComments"`
	Workers         int    `json:"workers" mapstructure:"workers"`
	Manifest        string `json:"manifest" mapstructure:"manifest"`
	Classmap        string `json:"classmap" mapstructure:"classmap"`
	SyntaxCheck     bool   `json:"syntaxCheck" mapstructure:"syntaxCheck"`

	Documents DocumentsConfig `json:"documents" mapstructure:"documents"`
	Journal   JournalConfig   `json:"journal" mapstructure:"journal"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// DocumentsConfig controls which configuration documents are rewritten.
type DocumentsConfig struct {
	Extensions []string `json:"extensions" mapstructure:"extensions"`
	TypeKeys   []string `json:"typeKeys" mapstructure:"typeKeys"`
	Sigil      string   `json:"sigil" mapstructure:"sigil"`
}

// JournalConfig controls the run journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration. MaxSize enables rotation
// of the log file ("10MB").
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:       currentVersion,
		VendorPrefix:  "PHPStanVendor",
		RootNamespace: "PHPStan",
		Workers:       1,
		Manifest:      "nsprefix.toml",
		Classmap:      "vendor/composer/autoload_classmap.php",
		SyntaxCheck:   true,
		Documents: DocumentsConfig{
			Extensions: []string{".yaml", ".yml", ".toml"},
			TypeKeys:   []string{"type", "class"},
			Sigil:      "@",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(Dir, "journal.db"),
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxBackups: 3,
		},
	}
}

// setDefaults mirrors DefaultConfig so that a partial file or an
// environment override keeps every other default.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("vendorPrefix", d.VendorPrefix)
	v.SetDefault("rootNamespace", d.RootNamespace)
	v.SetDefault("rewriteComments", d.RewriteComments)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("classmap", d.Classmap)
	v.SetDefault("syntaxCheck", d.SyntaxCheck)
	v.SetDefault("documents.extensions", d.Documents.Extensions)
	v.SetDefault("documents.typeKeys", d.Documents.TypeKeys)
	v.SetDefault("documents.sigil", d.Documents.Sigil)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// envKeys are the settings that can be overridden from the environment.
var envKeys = map[string]string{
	"vendorPrefix":  "VENDOR_PREFIX",
	"rootNamespace": "ROOT_NAMESPACE",
	"workers":       "WORKERS",
	"logging.level": "LOG_LEVEL",
}

// LoadConfig loads configuration from <root>/.nsprefix/config.*, falling
// back to the defaults when no file exists. NSPREFIX_* variables override
// both.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(root, Dir))

	v.SetEnvPrefix(EnvPrefix)
	for key, env := range envKeys {
		if err := v.BindEnv(key, EnvPrefix+"_"+env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.VendorPrefix = strings.Trim(c.VendorPrefix, `\`)
	c.RootNamespace = strings.Trim(c.RootNamespace, `\`)
	for i, ext := range c.Documents.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Documents.Extensions[i] = ext
	}
}

// Save writes the configuration to <root>/.nsprefix/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.VendorPrefix == "" {
		return &ConfigError{Field: "vendorPrefix", Message: "must not be empty"}
	}
	if !validNamespace(c.VendorPrefix) {
		return &ConfigError{Field: "vendorPrefix", Message: fmt.Sprintf("%q is not a namespace name", c.VendorPrefix)}
	}
	if c.RootNamespace != "" && !validNamespace(c.RootNamespace) {
		return &ConfigError{Field: "rootNamespace", Message: fmt.Sprintf("%q is not a namespace name", c.RootNamespace)}
	}
	if c.VendorPrefix == c.RootNamespace {
		return &ConfigError{Field: "vendorPrefix", Message: "must differ from rootNamespace"}
	}
	if c.Workers < 1 {
		return &ConfigError{Field: "workers", Message: "must be at least 1"}
	}
	if c.Documents.Sigil == "" {
		return &ConfigError{Field: "documents.sigil", Message: "must not be empty"}
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return &ConfigError{Field: "journal.path", Message: "must be set when the journal is enabled"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

// validNamespace accepts Foo and Foo\Bar.
func validNamespace(ns string) bool {
	for _, part := range strings.Split(ns, `\`) {
		if part == "" {
			return false
		}
		for i, c := range part {
			switch {
			case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80:
			case c >= '0' && c <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
