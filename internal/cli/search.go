package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var searchSize int

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchSize, "size", 20, "results per page")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search user profiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		page, err := core.SearchUsers(cmd.Context(), args[0], 0, searchSize)
		if err != nil {
			return err
		}
		core.RecordSearch(args[0])

		rows := make([][]string, 0, len(page.Content))
		for _, u := range page.Content {
			rows = append(rows, []string{
				u.Username,
				u.DisplayName,
				strconv.Itoa(u.FollowerCount),
				flagMark(u.IsFollowing),
			})
		}
		return writeTable(os.Stdout, []string{"USERNAME", "NAME", "FOLLOWERS", "FOLLOWING"}, rows)
	},
}
