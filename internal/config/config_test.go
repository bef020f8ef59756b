package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", Dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.VendorPrefix != "PHPStanVendor" || cfg.RootNamespace != "PHPStan" {
		t.Errorf("prefixes = %q, %q", cfg.VendorPrefix, cfg.RootNamespace)
	}
	if cfg.RewriteComments {
		t.Error("comment rewriting should be off by default")
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if !cfg.SyntaxCheck || !cfg.Journal.Enabled {
		t.Error("syntax check and journal should be enabled by default")
	}
	if !reflect.DeepEqual(cfg.Documents.TypeKeys, []string{"type", "class"}) {
		t.Errorf("TypeKeys = %v", cfg.Documents.TypeKeys)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 2 }, "version"},
		{"empty vendor prefix", func(c *Config) { c.VendorPrefix = "" }, "vendorPrefix"},
		{"vendor prefix with digit first", func(c *Config) { c.VendorPrefix = "1Vendor" }, "vendorPrefix"},
		{"vendor prefix with empty part", func(c *Config) { c.VendorPrefix = `A\\B` }, "vendorPrefix"},
		{"nested vendor prefix", func(c *Config) { c.VendorPrefix = `Acme\Vendor` }, ""},
		{"bad root namespace", func(c *Config) { c.RootNamespace = "Foo-Bar" }, "rootNamespace"},
		{"empty root namespace", func(c *Config) { c.RootNamespace = "" }, ""},
		{"same namespaces", func(c *Config) { c.RootNamespace = c.VendorPrefix }, "vendorPrefix"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"empty sigil", func(c *Config) { c.Documents.Sigil = "" }, "documents.sigil"},
		{"journal without path", func(c *Config) { c.Journal.Path = "" }, "journal.path"},
		{"disabled journal without path", func(c *Config) { c.Journal.Enabled = false; c.Journal.Path = "" }, ""},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			cerr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "workers", Message: "must be at least 1"}
	want := "config error in field 'workers': must be at least 1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{
		"version": 1,
		"vendorPrefix": "\\Acme\\Vendor\\",
		"workers": 4,
		"documents": {"extensions": ["neon", ".YML"]},
		"journal": {"enabled": false}
	}`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.VendorPrefix != `Acme\Vendor` {
		t.Errorf("VendorPrefix = %q", cfg.VendorPrefix)
	}
	if cfg.Workers != 4 || cfg.Journal.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Documents.Extensions, []string{".neon", ".yml"}) {
		t.Errorf("Extensions = %v", cfg.Documents.Extensions)
	}
	// keys absent from the file keep their defaults
	if cfg.RootNamespace != "PHPStan" || cfg.Documents.Sigil != "@" || cfg.Journal.Path == "" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "version: 1\nrootNamespace: Acme\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.RootNamespace != "Acme" {
		t.Errorf("RootNamespace = %q", cfg.RootNamespace)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", "{not json")

	_, err := LoadConfig(root)
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("LoadConfig() error = %v, want *ConfigError", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"version": 1, "workers": 2, "vendorPrefix": "FromFile"}`)

	t.Setenv("NSPREFIX_VENDOR_PREFIX", "FromEnv")
	t.Setenv("NSPREFIX_ROOT_NAMESPACE", "EnvRoot")
	t.Setenv("NSPREFIX_WORKERS", "8")
	t.Setenv("NSPREFIX_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.VendorPrefix != "FromEnv" || cfg.RootNamespace != "EnvRoot" {
		t.Errorf("prefixes = %q, %q", cfg.VendorPrefix, cfg.RootNamespace)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestConfig_Save(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.RootNamespace = "Acme"
	cfg.Documents.TypeKeys = []string{"factory"}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, Dir, "config.json")); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}
