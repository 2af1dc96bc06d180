package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/librarian-chat/pkg/chatapi"
	"github.com/go-go-golems/librarian-chat/pkg/config"
	"github.com/go-go-golems/librarian-chat/pkg/logging"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ExitError makes the process exit with Code without printing anything more.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type app struct {
	v        *viper.Viper
	settings *config.Settings
	logs     io.Closer
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root, a := newRootCommand()
	return a.execute(root)
}

// execute runs root and releases the log file afterwards. Cobra skips post-run hooks when
// a command fails, so this cannot live in PersistentPostRun.
func (a *app) execute(root *cobra.Command) error {
	defer a.close()
	return root.Execute()
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Chat with the smart librarian from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newChatCommand(a),
		newAskCommand(a),
		newHealthCommand(a),
		newLabelsCommand(a),
	)
	return root, a
}

func (a *app) init(cmd *cobra.Command) error {
	s, err := config.Load(a.v, cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = s
	return a.initLogging(s.Logging)
}

// initLogging can run twice: the full-screen UI moves logging off the terminal once it
// knows it will take it over.
func (a *app) initLogging(s logging.Settings) error {
	a.close()
	closer, err := logging.Init(s)
	if err != nil {
		return errors.Wrap(err, "could not initialize logging")
	}
	a.logs = closer
	log.Debug().Str("config", a.settings.ConfigFile).Str("base_url", a.settings.BaseURL).Msg("settings loaded")
	return nil
}

func (a *app) close() {
	if a.logs != nil {
		_ = a.logs.Close()
		a.logs = nil
	}
}

// newWidget wires a widget to b. It must be called after the final logging setup since
// the components capture the global logger.
func (a *app) newWidget(b widget.Bindings) (*widget.ChatWidget, error) {
	labels, err := a.settings.Labels()
	if err != nil {
		return nil, err
	}
	client, err := a.settings.Client(
		chatapi.WithLogger(log.Logger.With().Str("component", "chatapi").Logger()),
	)
	if err != nil {
		return nil, err
	}
	return widget.New(client, b,
		widget.WithLabels(labels),
		widget.WithLogger(log.Logger.With().Str("component", "widget").Logger()),
	)
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
