// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	appName = "librarian-chat"
)

type Settings struct {
	Level  string `mapstructure:"log-level"`
	Format string `mapstructure:"log-format"`
	// File sends logs to a rotating file instead of stderr.
	File string `mapstructure:"log-file"`
}

func (s Settings) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(s.Level)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", s.Level)
	}
	switch s.Format {
	case "", FormatConsole, FormatJSON:
		return nil
	default:
		return errors.Errorf("invalid log format %q, expected %s or %s", s.Format, FormatConsole, FormatJSON)
	}
}

// DefaultFile is the log file used when the terminal is taken over by the UI.
func DefaultFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appName+".log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, appName, appName+".log")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init replaces log.Logger according to s. Console output goes to stderr. The returned
// closer flushes the log file, if any.
func Init(s Settings) (io.Closer, error) {
	return initWithConsole(s, os.Stderr)
}

func initWithConsole(s Settings, console io.Writer) (io.Closer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	level, _ := zerolog.ParseLevel(strings.ToLower(s.Level))
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
		color            = isTerminal(console)
	)
	if s.File != "" {
		if err := os.MkdirAll(filepath.Dir(s.File), 0o755); err != nil {
			return nil, errors.Wrapf(err, "could not create log directory for %s", s.File)
		}
		lj := &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out, closer, color = lj, lj, false
	}

	if s.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, NoColor: !color, TimeFormat: time.RFC3339}
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
