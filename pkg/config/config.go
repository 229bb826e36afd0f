// Package config handles loading and parsing of lazya2l configuration.
// Configuration is loaded from ~/.lazya2l/config.yaml or ./config.yaml and
// may be overridden by LAZYA2L_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the root configuration structure for lazya2l.
type Config struct {
	UI     UIConfig     `mapstructure:"ui"`
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// UIConfig contains user interface configuration options.
type UIConfig struct {
	Theme ThemeConfig `mapstructure:"theme"`
	// PageSize is how many items of a section are shown before "show more".
	PageSize int `mapstructure:"pageSize"`
	// NerdFontsVersion selects icons: "" (plain), "2" or "3".
	NerdFontsVersion string `mapstructure:"nerdFontsVersion"`
}

// ThemeConfig defines the color scheme for the terminal UI.
// Colors can be specified as:
//   - Named colors: "cyan", "blue", "red", "green", "yellow", "magenta", "white", "black", "default"
//   - Hex colors: "#ed8796"
//   - 256-color numbers: "0" to "255"
//   - Attributes: "bold", "underline", "reverse"
type ThemeConfig struct {
	// ActiveBorderColor is the color of the focused panel's border and title
	ActiveBorderColor []string `mapstructure:"activeBorderColor"`
	// InactiveBorderColor is the color of unfocused panel borders
	InactiveBorderColor []string `mapstructure:"inactiveBorderColor"`
	// OptionsTextColor is the color of help text in the footer
	OptionsTextColor []string `mapstructure:"optionsTextColor"`
	// SelectedLineBgColor is the background color of the highlighted row
	SelectedLineBgColor []string `mapstructure:"selectedLineBgColor"`
	// FilterBorderColor marks the tree or details panel while it is filtered
	FilterBorderColor []string `mapstructure:"filterBorderColor"`
	// EditBorderColor marks the details panel while an entity edit is open
	EditBorderColor []string `mapstructure:"editBorderColor"`
	// SyntaxStyle is the chroma style used for entity previews
	SyntaxStyle string `mapstructure:"syntaxStyle"`
}

// DataConfig locates persisted editor state.
type DataConfig struct {
	// Dir holds the recent-file lists.
	Dir string `mapstructure:"dir"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
}

// ServerConfig configures `lazya2l serve` and the default remote address.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Dir is the per-user configuration directory.
const Dir = "~/.lazya2l"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.theme.activeBorderColor", []string{"cyan"})
	v.SetDefault("ui.theme.inactiveBorderColor", []string{"default"})
	v.SetDefault("ui.theme.optionsTextColor", []string{"cyan"})
	v.SetDefault("ui.theme.selectedLineBgColor", []string{"blue"})
	v.SetDefault("ui.theme.filterBorderColor", []string{"yellow"})
	v.SetDefault("ui.theme.editBorderColor", []string{"magenta"})
	v.SetDefault("ui.theme.syntaxStyle", "monokai")
	v.SetDefault("ui.pageSize", 200)
	v.SetDefault("ui.nerdFontsVersion", "")
	v.SetDefault("data.dir", filepath.Join(Dir, "data"))
	v.SetDefault("log.file", filepath.Join(Dir, "lazya2l.log"))
	v.SetDefault("log.maxSizeMB", 10)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("server.addr", "127.0.0.1:7171")
}

// LoadConfig loads configuration from ~/.lazya2l/ and the current directory.
func LoadConfig() (*Config, error) {
	dir, err := homedir.Expand(Dir)
	if err != nil {
		return Load()
	}
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Load(".")
	}
	return Load(dir, ".")
}

// Load reads config.yaml from the first of paths that has one, applies
// environment overrides and expands "~" in path settings. A missing file
// yields the defaults.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("LAZYA2L")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	for _, p := range []*string{&cfg.Data.Dir, &cfg.Log.File} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand %q", *p)
		}
		*p = expanded
	}
	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = 200
	}
	return cfg, nil
}
