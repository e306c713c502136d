package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	commentsPage int
	commentsSize int
)

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.Flags().IntVar(&commentsPage, "page", 0, "page number, starting at 0")
	commentsCmd.Flags().IntVar(&commentsSize, "size", 20, "comments per page")
}

var commentsCmd = &cobra.Command{
	Use:   "comments <thread-id>",
	Short: "Show a page of a thread's replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		page, err := core.LoadComments(cmd.Context(), args[0], commentsPage, commentsSize)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Content))
		for _, comment := range page.Content {
			rows = append(rows, []string{
				comment.ID,
				comment.Author.Username,
				comment.Body,
				comment.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "AUTHOR", "BODY", "WHEN"}, rows)
	},
}
