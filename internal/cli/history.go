package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verdinapp/verdin/internal/history"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyRmCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		items := core.History.Items()
		if len(items) == 0 {
			fmt.Fprintln(os.Stdout, "no recent searches")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			value := item.Query
			if item.Kind == history.KindUser {
				value = "@" + item.Username
			}
			rows = append(rows, []string{
				strconv.FormatInt(item.ID, 10),
				string(item.Kind),
				value,
				item.AddedAt.Format("2006-01-02 15:04"),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "KIND", "SEARCH", "WHEN"}, rows)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the recent-search list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		core.History.Clear()
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove one recent search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		core, closer, err := openCore(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		if !core.History.Remove(id) {
			return fmt.Errorf("no history entry with id %d", id)
		}
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}
