package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verdinapp/verdin/internal/models"
)

var (
	feedPage int
	feedSize int
)

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().IntVar(&feedPage, "page", 0, "page number, starting at 0")
	feedCmd.Flags().IntVar(&feedSize, "size", 20, "threads per page")
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show a page of the thread feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		page, err := core.LoadFeed(cmd.Context(), feedPage, feedSize)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Content))
		for _, th := range page.Content {
			rows = append(rows, []string{
				th.ID,
				th.Author.Username,
				threadPreview(th),
				strconv.Itoa(th.Stats.Likes),
				strconv.Itoa(th.Stats.Comments),
				flagMark(th.IsLiked),
			})
		}
		if err := writeTable(os.Stdout, []string{"ID", "AUTHOR", "PREVIEW", "LIKES", "COMMENTS", "LIKED"}, rows); err != nil {
			return err
		}
		if page.TotalElements > 0 {
			fmt.Fprintf(os.Stdout, "\npage %d of %d (%d threads)\n", feedPage+1, page.TotalPages, page.TotalElements)
		}
		return nil
	},
}

const previewLimit = 60

func threadPreview(th models.Thread) string {
	for _, seg := range th.Segments {
		if seg.Kind != models.SegmentKindText || seg.Body == "" {
			continue
		}
		if runes := []rune(seg.Body); len(runes) > previewLimit {
			return string(runes[:previewLimit]) + "…"
		}
		return seg.Body
	}
	return "(no text)"
}

func flagMark(set bool) string {
	if set {
		return "*"
	}
	return ""
}
