package cmds

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newLabelsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Print the effective labels as YAML, a starting point for --labels-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.settings.Labels()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(l); err != nil {
				return errors.Wrap(err, "could not encode labels")
			}
			return enc.Close()
		},
	}
}
