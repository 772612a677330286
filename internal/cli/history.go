package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/history"
	"github.com/ytget/ytfetch/internal/model"
)

// DefaultHistoryLimit is how many runs the history command shows
const DefaultHistoryLimit = 20

func (a *App) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "history lists previous download runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHistory(func(store *history.Store) error {
				runs, err := store.List(limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(a.Out, "No downloads recorded yet.")
					return nil
				}

				for _, run := range runs {
					fmt.Fprintf(a.Out, "%-10s %-14s %3d file(s)  %s  %s\n",
						run.Status, humanize.Time(run.StartedAt), len(run.Files), run.ID, run.GetDisplayTitle())
					if run.Message != "" && !run.Status.IsActive() {
						fmt.Fprintf(a.Out, "           %s\n", run.Message)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "number of runs to show (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "show prints one recorded run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHistory(func(store *history.Store) error {
				run, ok := store.Get(args[0])
				if !ok {
					return fmt.Errorf("no run with id %q", args[0])
				}
				printRun(a.Out, run)
				return nil
			})
		},
	})

	return cmd
}

// withHistory opens the run database for the duration of fn
func (a *App) withHistory(fn func(*history.Store) error) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return ErrHistoryDisabled
	}
	defer store.Close()
	return fn(store)
}

func printRun(w io.Writer, run *model.Run) {
	fmt.Fprintf(w, "ID:       %s\n", run.ID)
	fmt.Fprintf(w, "Title:    %s\n", run.GetDisplayTitle())
	fmt.Fprintf(w, "URL:      %s\n", run.URL)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	fmt.Fprintf(w, "Format:   %s, %s\n", run.Family.Label(), run.Quality)
	if run.Kind == model.KindCollection {
		fmt.Fprintf(w, "Items:    %d-%d\n", run.StartIndex, run.EndIndex)
	}
	fmt.Fprintf(w, "Output:   %s\n", run.OutputDir)
	fmt.Fprintf(w, "Started:  %s (%s)\n", run.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	if elapsed := run.Elapsed(); elapsed > 0 {
		fmt.Fprintf(w, "Elapsed:  %s\n", elapsed.Round(time.Second))
	}
	if run.FailureKind != "" {
		fmt.Fprintf(w, "Failure:  %s\n", run.FailureKind)
	}
	if run.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", run.Message)
	}
	if len(run.Files) > 0 {
		fmt.Fprintf(w, "Files:    %s\n", strings.Join(run.Files, "\n          "))
	}
}
