package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) itemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "items [playlist-url]",
		Short: "items lists the entries of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.Lister.ListEntries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(a.Out, "%3d  %s  %s\n", e.Index, e.Title, e.URL)
			}
			a.log.WithField("count", len(entries)).Debug("listed playlist entries")
			return nil
		},
	}
}
