package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/platform"
)

func (a *App) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [url]",
		Short: "check tells whether a URL is a supported video or playlist link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := platform.ClassifyReference(args[0])
			if !c.Valid {
				return errors.New(c.Reason)
			}
			fmt.Fprintf(a.Out, "valid %s link\n", c.Kind)
			return nil
		},
	}
}
