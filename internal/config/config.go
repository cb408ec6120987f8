package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/ini.v1"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// EnvURL overrides the configured API URL.
const EnvURL = "ZABBIX_URL"

// configFileNames lists config file names to try inside each search
// directory, in priority order.
var configFileNames = []string{
	"zabbix-cli.yaml",
	"zabbix-cli.yml",
	"zabbix-cli.conf", // legacy INI
}

// FindConfigPath returns the first existing config file from the search
// paths. Returns an empty string if none exist; defaults then apply.
func FindConfigPath() string {
	var dirs []string
	if d, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(d, "zabbix-cli"))
	}
	dirs = append(dirs, "/etc/zabbix-cli")
	for _, dir := range dirs {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Config holds all configuration values for zabbix-cli.
type Config struct {
	API       APIConfig       `koanf:"api"`
	App       AppConfig       `koanf:"app"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// APIConfig holds Zabbix API connection settings.
type APIConfig struct {
	URL       string `koanf:"url"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	AuthToken string `koanf:"auth_token"`
	VerifySSL bool   `koanf:"verify_ssl"`
	// Timeout is the per-request HTTP timeout in seconds. 0 disables
	// the timeout entirely.
	Timeout int `koanf:"timeout"`
}

// AppConfig holds application behavior settings.
type AppConfig struct {
	ExportDirectory  string `koanf:"export_directory"`
	ExportFormat     string `koanf:"export_format"`
	ExportTimestamps bool   `koanf:"export_timestamps"`

	UseSessionFile        bool   `koanf:"use_session_file"`
	SessionFile           string `koanf:"session_file"`
	AuthFile              string `koanf:"auth_file"`
	AuthTokenFile         string `koanf:"auth_token_file"`
	AllowInsecureAuthFile bool   `koanf:"allow_insecure_auth_file"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		API: APIConfig{
			URL:       "http://localhost/zabbix",
			VerifySSL: true,
			Timeout:   30,
		},
		App: AppConfig{
			ExportDirectory:  filepath.Join(dataDir, "exports"),
			ExportFormat:     "json",
			ExportTimestamps: false,
			UseSessionFile:   true,
			SessionFile:      filepath.Join(dataDir, ".zabbix-cli_session_id.json"),
			AuthFile:         filepath.Join(dataDir, ".zabbix-cli_auth"),
			AuthTokenFile:    filepath.Join(dataDir, ".zabbix-cli_auth_token"),
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "zabbix-cli")
	}
	return "."
}

// Load reads configuration from a file, auto-detecting format by extension.
// .yaml/.yml uses YAML via Koanf, anything else is treated as legacy INI.
// An empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	if path == "" {
		k := koanf.New(".")
		if err := loadDefaults(k); err != nil {
			return nil, err
		}
		if err := loadEnvOverrides(k); err != nil {
			return nil, err
		}
		return unmarshalAndValidate(k)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errs.New(errs.ErrConfig, "config file not found: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadINI(path)
	}
}

func loadYAML(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errs.Wrap(errs.ErrConfig, err, "failed to parse YAML config file %s", path)
	}

	if err := loadEnvOverrides(k); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(k)
}

// loadINI loads config from a legacy zabbix-cli v2 .conf file.
func loadINI(path string) (*Config, error) {
	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfig, err, "failed to parse INI config file %s", path)
	}

	m, warnings := iniToMap(iniFile)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return nil, errs.Wrap(errs.ErrConfig, err, "failed to load INI values")
	}

	if err := loadEnvOverrides(k); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(k)
}

// iniKeyMap maps legacy v2 INI key names (lowercased) to koanf key paths.
var iniKeyMap = map[string]string{
	// [zabbix_api] section
	"zabbix_api_url": "api.url",
	"cert_verify":    "api.verify_ssl",
	"timeout":        "api.timeout",
	// [zabbix_config] section
	"default_directory_exports":         "app.export_directory",
	"default_export_format":             "app.export_format",
	"include_timestamp_export_filename": "app.export_timestamps",
	"use_auth_token_file":               "app.use_session_file",
}

// legacyINIKeys lists v2-era INI keys that are recognized but have no
// equivalent here. They produce a specific warning instead of
// "unrecognized".
var legacyINIKeys = map[string]bool{
	"system_id":                            true, // replaced by per-URL session entries
	"default_hostgroup":                    true, // front-end concern
	"default_admin_usergroup":              true, // front-end concern
	"default_create_user_usergroup":        true, // front-end concern
	"default_notification_users_usergroup": true, // front-end concern
	"use_colors":                           true, // output rendering out of scope
	"use_paging":                           true, // output rendering out of scope
	"logging":                              true, // uses --verbose flag
	"log_level":                            true, // uses --verbose flag
	"log_file":                             true, // logs to stderr
}

func iniToMap(f *ini.File) (map[string]interface{}, []string) {
	m := make(map[string]interface{})
	var warnings []string

	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			normalised := strings.ToLower(key.Name())
			if koanfKey, ok := iniKeyMap[normalised]; ok {
				m[koanfKey] = convertINIValue(koanfKey, key.Value())
			} else if legacyINIKeys[normalised] {
				warnings = append(warnings, fmt.Sprintf("legacy INI key [%s] %s is not supported (skipped)", section.Name(), key.Name()))
			} else if section.Name() != "DEFAULT" {
				warnings = append(warnings, fmt.Sprintf("unrecognized INI key [%s] %s (skipped)", section.Name(), key.Name()))
			}
		}
	}

	return m, warnings
}

// convertINIValue maps the v2 ON/OFF convention to booleans for keys
// that unmarshal into bool fields.
func convertINIValue(koanfKey, value string) interface{} {
	switch koanfKey {
	case "api.verify_ssl", "app.export_timestamps", "app.use_session_file":
		switch strings.ToLower(value) {
		case "on", "true", "1", "yes":
			return true
		case "off", "false", "0", "no":
			return false
		}
	}
	return value
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := DefaultConfig()
	return k.Load(confmap.Provider(map[string]interface{}{
		"api.url":                      defaults.API.URL,
		"api.verify_ssl":               defaults.API.VerifySSL,
		"api.timeout":                  defaults.API.Timeout,
		"app.export_directory":         defaults.App.ExportDirectory,
		"app.export_format":            defaults.App.ExportFormat,
		"app.export_timestamps":        defaults.App.ExportTimestamps,
		"app.use_session_file":         defaults.App.UseSessionFile,
		"app.session_file":             defaults.App.SessionFile,
		"app.auth_file":                defaults.App.AuthFile,
		"app.auth_token_file":          defaults.App.AuthTokenFile,
		"app.allow_insecure_auth_file": defaults.App.AllowInsecureAuthFile,
		"telemetry.enabled":            defaults.Telemetry.Enabled,
	}, "."), nil)
}

func loadEnvOverrides(k *koanf.Koanf) error {
	// ZABBIX_CLI_API_URL -> api.url, ZABBIX_CLI_APP_EXPORT_FORMAT -> app.export_format
	if err := k.Load(env.Provider("ZABBIX_CLI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ZABBIX_CLI_")
		s = strings.ToLower(s)
		if idx := strings.Index(s, "_"); idx >= 0 {
			return s[:idx] + "." + s[idx+1:]
		}
		return s
	}), nil); err != nil {
		return errs.Wrap(errs.ErrConfig, err, "failed to load environment overrides")
	}

	// ZABBIX_URL is the documented short-form override of the API URL.
	if u := os.Getenv(EnvURL); u != "" {
		if err := k.Load(confmap.Provider(map[string]interface{}{"api.url": u}, "."), nil); err != nil {
			return errs.Wrap(errs.ErrConfig, err, "failed to apply %s", EnvURL)
		}
	}
	return nil
}

func unmarshalAndValidate(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrConfig, err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that connection fields are set and values are in range.
func (c *Config) Validate() error {
	var errList []error

	if c.API.URL == "" {
		errList = append(errList, fmt.Errorf("api.url is required"))
	} else {
		u, err := url.Parse(c.API.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errList = append(errList, fmt.Errorf("api.url must be a valid URL with scheme and host"))
		}
	}
	if c.API.Timeout < 0 {
		errList = append(errList, fmt.Errorf("api.timeout must be >= 0, got %d", c.API.Timeout))
	}
	switch strings.ToLower(c.App.ExportFormat) {
	case "json", "yaml", "xml", "php":
	default:
		errList = append(errList, fmt.Errorf("app.export_format must be one of json, yaml, xml, php; got %q", c.App.ExportFormat))
	}

	if err := errors.Join(errList...); err != nil {
		return errs.Wrap(errs.ErrConfig, err, "invalid configuration")
	}
	return nil
}
