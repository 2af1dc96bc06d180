package main

import (
	"os"

	"github.com/go-go-golems/librarian-chat/cmd/librarian-chat/cmds"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	err := cmds.Execute()

	var exit *cmds.ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	cobra.CheckErr(err)
}
