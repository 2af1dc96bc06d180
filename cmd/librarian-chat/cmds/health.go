package cmds

import (
	"github.com/go-go-golems/librarian-chat/pkg/lineui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Query the backend health endpoint and print the status line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term := lineui.NewTerminal(cmd.OutOrStdout())
			w, err := a.newWidget(term.Bindings())
			if err != nil {
				return err
			}
			if err := w.Health(cmd.Context()); err != nil {
				log.Debug().Err(err).Msg("backend unavailable")
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}
