// Package config loads pr-finder configuration from a TOML file and
// environment variables via viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Finder FinderConfig `mapstructure:"finder"`
	GitHub GitHubConfig `mapstructure:"github"`
	UI     UIConfig     `mapstructure:"ui"`
}

// FinderConfig holds aggregation settings.
type FinderConfig struct {
	Limit       int    `mapstructure:"limit"`       // Max results per search query (default: 100)
	Owner       string `mapstructure:"owner"`       // Restrict all queries to this owner/org
	Interactive string `mapstructure:"interactive"` // "auto", "always", "never"
}

// GitHubConfig holds GitHub integration configuration.
type GitHubConfig struct {
	AuthMethod         string `mapstructure:"auth_method"`          // "token", "oauth", "gh_cli"
	ClientID           string `mapstructure:"client_id"`            // OAuth app client ID (for device flow)
	Token              string `mapstructure:"token"`                // For token auth (GITHUB_TOKEN env var takes precedence)
	DefaultMergeMethod string `mapstructure:"default_merge_method"` // "merge", "squash", "rebase"
}

// UIConfig holds terminal rendering configuration.
type UIConfig struct {
	Color string `mapstructure:"color"` // "auto", "always", "never"
}

// Init points viper at the config file and environment, then loads.
// cfgFile overrides the default location ($HOME/.config/pr-finder/config.toml).
// A missing config file is not an error; defaults apply.
func Init(cfgFile string) (*Config, error) {
	viper.Reset()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "pr-finder"))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PR_FINDER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return nil, errors.Wrapf(err, "failed to read config file %s", cfgFile)
		}
	}

	return Load()
}

// Load builds a Config from the current viper state.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// ValidMergeMethods is the list of supported GitHub merge methods.
var ValidMergeMethods = []string{"merge", "squash", "rebase"}

// ValidateMergeMethod validates that a merge method is supported.
func ValidateMergeMethod(method string) error {
	if method == "" {
		return nil // Empty is allowed, will use the repository default
	}
	for _, valid := range ValidMergeMethods {
		if method == valid {
			return nil
		}
	}
	return errors.Newf("invalid merge method %q: must be one of: merge, squash, rebase", method)
}

// validModeValues is shared by finder.interactive and ui.color.
var validModeValues = []string{"auto", "always", "never"}

func validateMode(field, value string) error {
	for _, valid := range validModeValues {
		if value == valid {
			return nil
		}
	}
	return errors.Newf("invalid %s %q: must be one of: auto, always, never", field, value)
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if c.Finder.Limit <= 0 {
		return errors.Newf("finder.limit must be positive, got %d", c.Finder.Limit)
	}
	if err := validateMode("finder.interactive", c.Finder.Interactive); err != nil {
		return err
	}
	if err := validateMode("ui.color", c.UI.Color); err != nil {
		return err
	}
	if err := ValidateMergeMethod(c.GitHub.DefaultMergeMethod); err != nil {
		return errors.Wrap(err, "github.default_merge_method")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("finder.limit", 100)
	viper.SetDefault("finder.owner", "")
	viper.SetDefault("finder.interactive", "auto")

	viper.SetDefault("github.auth_method", "gh_cli") // Prefer gh CLI auth
	viper.SetDefault("github.client_id", "")
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.default_merge_method", "")

	viper.SetDefault("ui.color", "auto")
}
