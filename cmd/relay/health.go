package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the relay server",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := relayClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			printJSON(health)
		} else {
			fmt.Printf("Health:      %s\n", health.Status)
			fmt.Printf("Subscribers: %d\n", health.Subscribers)
			fmt.Printf("Events:      %d\n", health.EventsStored)
		}

		if health.Status != "ok" {
			return fmt.Errorf("unhealthy: %s", health.Status)
		}
		return nil
	},
}
