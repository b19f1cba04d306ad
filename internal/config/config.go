// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the odoo-instances.json configuration that names the
// Odoo instances this tool talks to and the extraction filters it applies.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// ConfigDirName is the per-project directory holding all odoosync state.
const ConfigDirName = ".odoo-sync"

// InstanceConfig describes one Odoo instance.
type InstanceConfig struct {
	URL         string `json:"url"`
	Database    string `json:"database"`
	Username    string `json:"username"`
	APIKey      string `json:"api_key"`
	ReadOnly    bool   `json:"read_only"`
	Description string `json:"description"`
	OdooSource  string `json:"odoo_source"`
}

// SyncConfig tunes sync behavior.
type SyncConfig struct {
	ConflictResolution  string `json:"conflict_resolution"`
	PreserveLoggedTime  bool   `json:"preserve_logged_time"`
	AutoMoveCompleted   bool   `json:"auto_move_completed"`
	RequireConfirmation bool   `json:"require_confirmation"`
}

// ExtractionFilters hold the per-extractor search domains. Every filter
// must be declared explicitly; there are no defaults.
type ExtractionFilters struct {
	CustomFields  Domain `json:"custom_fields"`
	ServerActions Domain `json:"server_actions"`
	Automations   Domain `json:"automations"`
	Views         Domain `json:"views"`
	Reports       Domain `json:"reports"`
}

// Config is the full parsed configuration.
type Config struct {
	Instances         map[string]*InstanceConfig `json:"instances"`
	ActiveInstance    string                     `json:"active_instance"`
	Sync              SyncConfig                 `json:"sync"`
	ExtractionFilters ExtractionFilters          `json:"extraction_filters"`
}

// Instance returns the named instance or an error.
func (c *Config) Instance(name string) (*InstanceConfig, error) {
	inst, ok := c.Instances[name]
	if !ok {
		return nil, fmt.Errorf("instance %q not found in configuration", name)
	}
	return inst, nil
}

// Implementation is the read-only instance customizations are extracted from.
func (c *Config) Implementation() (*InstanceConfig, error) { return c.Instance("implementation") }

// Development is the writable instance tasks are created in.
func (c *Config) Development() (*InstanceConfig, error) { return c.Instance("development") }

// FindProjectRoot walks up from dir looking for a .odoo-sync directory.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ConfigDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s directory found above %s", ConfigDirName, dir)
		}
		dir = parent
	}
}

// Load reads configuration from projectRoot/.odoo-sync/odoo-instances.json.
// A .env file at the project root is loaded first so ${VAR} placeholders in
// the configuration can reference it.
func Load(projectRoot string) (*Config, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	path := filepath.Join(projectRoot, ConfigDirName, "odoo-instances.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration file not found, run 'odoosync init' first: %w", err)
	}

	resolved, err := resolveEnvVars(string(data))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// resolveEnvVars substitutes ${VAR} placeholders from the environment.
// Unset variables are an error rather than an empty credential.
func resolveEnvVars(data string) (string, error) {
	var missing []string
	out := envVarRe.ReplaceAllStringFunc(data, func(m string) string {
		name := envVarRe.FindStringSubmatch(m)[1]
		val, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return val
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (c *Config) validate() error {
	if len(c.Instances) == 0 {
		return fmt.Errorf("configuration must declare at least one instance")
	}
	for name, inst := range c.Instances {
		var empty []string
		required := []struct{ field, val string }{
			{"url", inst.URL},
			{"database", inst.Database},
			{"username", inst.Username},
			{"api_key", inst.APIKey},
		}
		for _, r := range required {
			if strings.TrimSpace(r.val) == "" {
				empty = append(empty, r.field)
			}
		}
		if len(empty) > 0 {
			return fmt.Errorf("instance %q has missing or empty fields: %s", name, strings.Join(empty, ", "))
		}
		if inst.OdooSource != "" {
			if _, err := os.Stat(expandHome(inst.OdooSource)); err != nil {
				return fmt.Errorf("instance %q has invalid odoo_source path %s", name, inst.OdooSource)
			}
		}
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Save writes a configuration to projectRoot/.odoo-sync/odoo-instances.json.
func Save(cfg *Config, projectRoot string) (string, error) {
	dir := filepath.Join(projectRoot, ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "odoo-instances.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("writing configuration: %w", err)
	}
	return path, nil
}
