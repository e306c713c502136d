package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(quotaCmd)
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's remaining interaction allowance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		fmt.Fprintf(os.Stdout, "%d of %d interactions left today\n",
			core.Quota.Remaining(), core.Quota.Limit())
		if core.Quota.Exhausted() {
			fmt.Fprintln(os.Stdout, "daily quota exhausted: likes and comments will be rejected until tomorrow")
		}
		return nil
	},
}
