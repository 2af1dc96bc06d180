package cmds

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-go-golems/librarian-chat/pkg/lineui"
	"github.com/go-go-golems/librarian-chat/pkg/logging"
	"github.com/go-go-golems/librarian-chat/pkg/ui"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (full-screen on a terminal, line mode otherwise)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	if isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
		return a.runTUI(cmd.Context(), nil)
	}
	return a.runLines(cmd)
}

func (a *app) runLines(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	term := lineui.NewTerminal(cmd.OutOrStdout(), lineui.WithImageToggle(a.settings.GenerateImage))
	w, err := a.newWidget(term.Bindings())
	if err != nil {
		return err
	}
	log.Debug().Msg("starting line mode chat")
	return lineui.Run(ctx, term, w, cmd.InOrStdin())
}

// runTUI starts the full-screen UI. A non-nil seed writes rows shown before the first
// exchange.
func (a *app) runTUI(ctx context.Context, seed func(widget.Transcript)) error {
	ls := a.settings.Logging
	if ls.File == "" {
		ls.File = logging.DefaultFile()
	}
	if err := a.initLogging(ls); err != nil {
		return err
	}

	surface := ui.NewSurface(ui.WithImageToggle(a.settings.GenerateImage))
	if seed != nil {
		seed(surface)
	}
	w, err := a.newWidget(surface.Bindings())
	if err != nil {
		return err
	}

	log.Info().Str("base_url", a.settings.BaseURL).Msg("starting chat ui")
	m := ui.NewModel(surface, ui.NewWidgetBackend(ctx, w), ui.WithMarkdown(a.settings.Markdown))
	return ui.Run(ctx, m)
}
