package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	eventsAfter uint64
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List vault events",
	Long: `List committed events in sequence order.

Examples:
  avault events
  avault events --after 40 --limit 10 --json`,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Uint64Var(&eventsAfter, "after", 0, "only events with a greater sequence number")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 50, "maximum number of events")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		evs, err := b.Events(ctx, eventsAfter, eventsLimit)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		return render(evs, func() {
			if len(evs) == 0 {
				fmt.Fprintln(stdout, Dim("No events"))
				return
			}
			w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", Bold("SEQ"), Bold("TIME"), Bold("TYPE"), Bold("DATA"))
			for _, ev := range evs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ev.Seq, ev.Timestamp.Local().Format(time.DateTime), ev.Type, ev.Data)
			}
			w.Flush()
		})
	})
}
