package main

import (
	"context"
	"fmt"

	"github.com/groblegark/relay/internal/client"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "List recorded events",
	GroupID: "events",
	RunE: func(cmd *cobra.Command, args []string) error {
		system, _ := cmd.Flags().GetString("system")
		eventType, _ := cmd.Flags().GetString("type")
		correlation, _ := cmd.Flags().GetString("correlation")
		limit, _ := cmd.Flags().GetInt("limit")
		filterFirst, _ := cmd.Flags().GetBool("filter-first")

		resp, err := relayClient.ListEvents(context.Background(), &client.ListEventsRequest{
			SourceSystem:  system,
			EventType:     eventType,
			CorrelationID: correlation,
			Limit:         limit,
			FilterFirst:   filterFirst,
		})
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		if jsonOutput {
			printJSON(resp.Events)
		} else {
			printRecordTable(resp.Events, resp.Count)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("system", "", "filter by source system")
	eventsCmd.Flags().StringP("type", "t", "", "filter by event type")
	eventsCmd.Flags().String("correlation", "", "filter by correlation id")
	eventsCmd.Flags().Int("limit", 0, "maximum number of events to return")
	eventsCmd.Flags().Bool("filter-first", false, "apply filters before the limit window")
}
