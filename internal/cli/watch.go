package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdinapp/verdin/internal/store"
)

var watchRefresh time.Duration

// notificationPrinter returns a cell subscriber that prints each arriving
// notification once. The dedup set is rebuilt from the store's bounded
// recent list on every update, so a long-running watch holds at most that
// many ids.
func notificationPrinter(out io.Writer) func(store.NotificationState) {
	printed := make(map[string]bool)
	return func(state store.NotificationState) {
		next := make(map[string]bool, len(state.Recent))
		for i := len(state.Recent) - 1; i >= 0; i-- {
			notif := state.Recent[i]
			if !printed[notif.ID] {
				fmt.Fprintf(out, "%s  %-8s %s %s\n",
					notif.CreatedAt.Format(time.RFC3339),
					notif.Type,
					notif.Actor.Username,
					notif.Message)
			}
			next[notif.ID] = true
		}
		printed = next
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchRefresh, "refresh", time.Minute, "unread poll interval while the push channel is down")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream notifications as they arrive",
	Long: "Stream push notifications to stdout until interrupted. While the\n" +
		"push channel is unavailable the unread summary is polled instead.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, closer, err := openCore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cancel := core.Notifications.Cell().Subscribe(notificationPrinter(os.Stdout))
		defer cancel()

		if core.Channel.Connected() {
			fmt.Fprintln(os.Stderr, "watching for notifications, ctrl-c to stop")
		} else {
			fmt.Fprintf(os.Stderr, "push channel down, polling every %s, ctrl-c to stop\n", watchRefresh)
		}

		ticker := time.NewTicker(watchRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if core.Channel.Connected() {
					continue
				}
				if err := core.RefreshUnread(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "unread poll failed: %v\n", err)
				}
			}
		}
	},
}
