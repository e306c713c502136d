package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdinapp/verdin/internal/client"
)

var undoFlag bool

func init() {
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(markReadCmd)
	likeCmd.Flags().BoolVar(&undoFlag, "undo", false, "remove instead of add")
	saveCmd.Flags().BoolVar(&undoFlag, "undo", false, "remove instead of add")
	followCmd.Flags().BoolVar(&undoFlag, "undo", false, "unfollow instead of follow")
}

// reportAction prints the outcome of a toggle, distinguishing a backend
// rejection (which has already been undone locally) from a transport error.
func reportAction(err error) error {
	var actionErr *client.ActionError
	if errors.As(err, &actionErr) {
		return fmt.Errorf("%s was rejected and undone: %v", actionErr.Op, actionErr.Err)
	}
	return err
}

var likeCmd = &cobra.Command{
	Use:   "like <thread-id>",
	Short: "Like a thread (or --undo to unlike)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if _, err := core.LoadThread(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := core.ToggleLike(cmd.Context(), args[0], !undoFlag); err != nil {
			return reportAction(err)
		}
		fmt.Fprintf(os.Stdout, "ok (%d interactions left today)\n", core.Quota.Remaining())
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <thread-id>",
	Short: "Save a thread (or --undo to unsave)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if _, err := core.LoadThread(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := core.ToggleSave(cmd.Context(), args[0], !undoFlag); err != nil {
			return reportAction(err)
		}
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow a user (or --undo to unfollow)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if _, err := core.LoadUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := core.ToggleFollowUser(cmd.Context(), args[0], !undoFlag); err != nil {
			return reportAction(err)
		}
		core.RecordUserVisit(args[0])
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read",
	Short: "Mark all notifications as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if err := core.MarkAllNotificationsRead(cmd.Context()); err != nil {
			return reportAction(err)
		}
		fmt.Fprintln(os.Stdout, "ok")
		return nil
	},
}
