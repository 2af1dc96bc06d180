// Package config resolves the client settings from flags, LIBRARIAN_* environment
// variables and an optional YAML config file, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-go-golems/librarian-chat/pkg/chatapi"
	"github.com/go-go-golems/librarian-chat/pkg/logging"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "LIBRARIAN"
	AppName   = "librarian-chat"

	DefaultTimeout = 60 * time.Second
)

type Settings struct {
	BaseURL       string        `mapstructure:"base-url" yaml:"base-url"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Locale        string        `mapstructure:"locale" yaml:"locale"`
	LabelsFile    string        `mapstructure:"labels-file" yaml:"labels-file,omitempty"`
	GenerateImage bool          `mapstructure:"generate-image" yaml:"generate-image"`
	Markdown      bool          `mapstructure:"markdown" yaml:"markdown"`

	Logging logging.Settings `mapstructure:",squash" yaml:"-"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// AddFlags registers the settings flags on fs, usually the root command's persistent
// flag set.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default $XDG_CONFIG_HOME/librarian-chat/config.yaml)")
	fs.String("env-file", ".env", "dotenv file with LIBRARIAN_* variables, skipped when missing")
	fs.String("base-url", chatapi.DefaultBaseURL, "librarian backend base URL")
	fs.Duration("timeout", DefaultTimeout, "HTTP timeout for backend requests, 0 disables it")
	fs.String("locale", widget.DefaultLocale, "label language ("+strings.Join(widget.Locales(), ", ")+")")
	fs.String("labels-file", "", "YAML file overriding individual labels")
	fs.Bool("generate-image", false, "start with cover image generation checked")
	fs.Bool("markdown", true, "render bot replies as markdown in the full-screen UI")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-format", logging.FormatConsole, "log format (console, json)")
	fs.String("log-file", "", "write logs to this rotating file instead of stderr")
}

// DefaultConfigFile returns the per-user config file location.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// Load binds v to fs and the environment, reads the config file and decodes the result.
// An explicit --config file must exist; the default one is optional. Variables from the
// dotenv file never override the real environment.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Settings, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "could not bind flags")
	}

	if envFile := v.GetString("env-file"); envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "could not load env file %s", envFile)
			}
		}
	}

	file := v.GetString("config")
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile()
	}
	if file != "" {
		_, statErr := os.Stat(file)
		switch {
		case statErr == nil:
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "could not read config file %s", file)
			}
		case explicit:
			return nil, errors.Wrapf(statErr, "config file %s", file)
		default:
			file = ""
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "could not decode settings")
	}
	s.ConfigFile = file
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		return errors.New("base-url must not be empty")
	}
	return s.Logging.Validate()
}

// Labels loads the locale pack and applies the override file, if any.
func (s *Settings) Labels() (widget.Labels, error) {
	l, err := widget.LoadLocale(s.Locale)
	if err != nil {
		return widget.Labels{}, err
	}
	if s.LabelsFile == "" {
		return l, nil
	}
	return l.MergeFile(s.LabelsFile)
}

// Client builds the backend client described by s.
func (s *Settings) Client(options ...chatapi.ClientOption) (*chatapi.Client, error) {
	options = append([]chatapi.ClientOption{chatapi.WithTimeout(s.Timeout)}, options...)
	return chatapi.NewClient(s.BaseURL, options...)
}
