// Package config loads capture settings from the environment and an optional
// shots.yaml file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppName names the config directory under $XDG_CONFIG_HOME.
const AppName = "skillshots"

// ErrInvalidConfig wraps every validation failure returned by NewConfig.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	BaseURL   string `validate:"required,http_url"`
	OutputDir string `validate:"required"`

	ViewportWidth  int    `validate:"min=1,max=10000"`
	ViewportHeight int    `validate:"min=1,max=10000"`
	ColorScheme    string `validate:"oneof=light dark no-preference"`
	FullPage       bool

	Headless          bool
	InstallBrowsers   bool
	NavigationTimeout time.Duration `validate:"gt=0"`

	// Probe checks the dev server before a browser is launched.
	Probe        bool
	ProbeTimeout time.Duration `validate:"gt=0"`

	LogLevel  string
	LogFormat string `validate:"oneof=console json"`

	ServePort int `validate:"min=1,max=65535"`
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SHOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// No config type: viper would then also accept an extensionless ./shots,
	// which is where go build puts the binary.
	v.SetConfigName("shots")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("output_dir", "screenshots")
	v.SetDefault("viewport_width", 1400)
	v.SetDefault("viewport_height", 900)
	v.SetDefault("color_scheme", "dark")
	v.SetDefault("full_page", false)
	v.SetDefault("headless", true)
	v.SetDefault("install_browsers", true)
	v.SetDefault("navigation_timeout", 30*time.Second)
	v.SetDefault("probe", true)
	v.SetDefault("probe_timeout", 3*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("serve_port", 8787)

	return v
}

// ReadFile merges shots.yaml into v when one exists. A missing file is not
// an error; a malformed one is.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

func NewConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:   strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		OutputDir: strings.TrimSpace(v.GetString("output_dir")),

		ViewportWidth:  v.GetInt("viewport_width"),
		ViewportHeight: v.GetInt("viewport_height"),
		ColorScheme:    strings.ToLower(strings.TrimSpace(v.GetString("color_scheme"))),
		FullPage:       v.GetBool("full_page"),

		Headless:          v.GetBool("headless"),
		InstallBrowsers:   v.GetBool("install_browsers"),
		NavigationTimeout: v.GetDuration("navigation_timeout"),

		Probe:        v.GetBool("probe"),
		ProbeTimeout: v.GetDuration("probe_timeout"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),

		ServePort: v.GetInt("serve_port"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load is NewViper + ReadFile + NewConfig for callers without overrides.
func Load() (Config, error) {
	v := NewViper()
	if err := ReadFile(v); err != nil {
		return Config{}, err
	}
	return NewConfig(v)
}
