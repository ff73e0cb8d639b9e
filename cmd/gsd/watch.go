package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gridstat/diversity/internal/events"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [topic]",
	Short: "Stream run events from the event bus",
	Long: `Subscribe to the event bus and print every event as it arrives.
The default subscription covers all diversity topics; pass a topic
pattern to narrow it (e.g. diversity.run.failed).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := "diversity.>"
		if len(args) == 1 {
			topic = args[0]
		}

		// Watching needs only the bus, not the database.
		natsURL := os.Getenv("GSD_NATS_URL")
		if natsURL == "" {
			return fmt.Errorf("GSD_NATS_URL is not set")
		}

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(os.Stderr, "Watching %s (ctrl-c to stop)\n", topic)
		for {
			select {
			case <-ctx.Done():
				return nil
			case payload, ok := <-ch:
				if !ok {
					return nil
				}
				fmt.Println(string(payload))
			}
		}
	},
}
