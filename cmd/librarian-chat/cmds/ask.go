package cmds

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/librarian-chat/pkg/lineui"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	input "github.com/tcnksm/go-input"
)

func newAskCommand(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send a single message and print the reply",
		Long: "Send a single message and print the reply. The exit status is 1 when the\n" +
			"request failed before the backend could answer.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			term := lineui.NewTerminal(cmd.OutOrStdout(), lineui.WithImageToggle(a.settings.GenerateImage))
			w, err := a.newWidget(term.Bindings())
			if err != nil {
				return err
			}
			if !lineui.Ask(cmd.Context(), term, w, text) {
				return &ExitError{Code: 1}
			}

			if !interactive || !isTerminal(os.Stdin) || !isTerminal(os.Stderr) {
				return nil
			}
			cont, err := askForChatContinuation(os.Stdin, os.Stderr)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
			log.Debug().Msg("continuing in chat mode")
			return a.runTUI(cmd.Context(), seedExchange(text, w))
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "offer to continue in the full-screen chat afterwards")
	return cmd
}

// seedExchange replays the one-shot exchange, image row included, into another transcript.
func seedExchange(question string, w *widget.ChatWidget) func(widget.Transcript) {
	reply, img := w.LastReply(), w.LastImage()
	return func(t widget.Transcript) {
		t.AppendMessage(widget.Message{Role: widget.RoleUser, Text: strings.TrimSpace(question)})
		t.AppendMessage(widget.Message{Role: widget.RoleBot, Text: reply})
		if img != nil {
			t.AppendImage(*img)
		}
	}
}

func askForChatContinuation(in io.Reader, out io.Writer) (bool, error) {
	ui := &input.UI{
		Writer: out,
		Reader: in,
	}

	_, _ = fmt.Fprint(out, "\n")
	answer, err := ui.Ask("Continue in chat mode? [Y/n]", &input.Options{
		Default:  "y",
		Required: true,
		Loop:     true,
		ValidateFunc: func(answer string) error {
			switch answer {
			case "y", "Y", "n", "N", "":
				return nil
			default:
				return errors.Errorf("please enter 'y' or 'n'")
			}
		},
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to get user input")
	}
	return answer == "y" || answer == "Y" || answer == "", nil
}
