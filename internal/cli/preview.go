package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/format"
	"github.com/ytget/ytfetch/internal/metadata"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
)

func (a *App) previewCommand() *cobra.Command {
	var formatName, qualityName string

	cmd := &cobra.Command{
		Use:   "preview [url]",
		Short: "preview shows title, owner and size of a video or playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := platform.NewReference(args[0])
			if err != nil {
				return err
			}
			family, quality, err := a.selection(cmd, formatName, qualityName)
			if err != nil {
				return err
			}
			sel, err := format.Negotiate(family, quality, ref.Kind)
			if err != nil {
				return err
			}

			resolver := metadata.NewResolver(a.Engine, a.log)
			m, err := resolver.Preview(cmd.Context(), ref, model.DefaultItemCount(ref.Kind))
			if err != nil {
				return err
			}

			printPreview(a.Out, m)
			printSelection(a.Out, family, quality, sel)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "format: "+strings.Join(model.FormatFamilyNames(), ", "))
	cmd.Flags().StringVarP(&qualityName, "quality", "q", "", "quality: "+strings.Join(model.QualityNames(), ", "))
	return cmd
}

// printSelection shows the format a download would request and its fallbacks
func printSelection(w io.Writer, family model.FormatFamily, quality model.Quality, sel format.Selection) {
	fmt.Fprintf(w, "Format:   %s, %s\n", family.Label(), quality)
	fmt.Fprintf(w, "Tries:    %s\n", strings.Join(format.Chain(sel.Selector), ", "))
	if sel.PostProcessing != nil {
		fmt.Fprintf(w, "Convert:  %s at %dk\n", sel.PostProcessing.Codec, sel.PostProcessing.TargetBitrate)
	}
}

func printPreview(w io.Writer, m *model.ContentMetadata) {
	if m.Placeholder {
		fmt.Fprintln(w, "Preview unavailable: YouTube is throttling requests from this machine.")
	}

	fmt.Fprintf(w, "Title:    %s\n", m.Title)
	fmt.Fprintf(w, "Owner:    %s\n", m.Owner)
	fmt.Fprintf(w, "Kind:     %s\n", m.Kind)
	fmt.Fprintf(w, "Duration: %s\n", model.FormatDuration(m.Duration()))

	if m.Kind == model.KindCollection {
		fmt.Fprintf(w, "Items:    %d\n", m.Count())
		for i, item := range m.Items {
			d := 0
			if item.DurationSeconds != nil {
				d = *item.DurationSeconds
			}
			fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, item.Title, model.FormatDuration(d))
		}
		return
	}

	if m.Placeholder {
		return
	}
	fmt.Fprintf(w, "Views:    %s\n", model.FormatNumber(m.ViewCount))
	if m.LikeCount != nil {
		fmt.Fprintf(w, "Likes:    %s\n", model.FormatNumber(*m.LikeCount))
	}
	if len(m.Tags) > 0 {
		fmt.Fprintf(w, "Tags:     %s\n", strings.Join(m.Tags, ", "))
	}
}
