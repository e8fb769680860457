package main

import (
	"context"
	"fmt"

	"github.com/groblegark/relay/internal/model"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:     "publish <event_type>",
	Short:   "Publish an event",
	GroupID: "events",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		targets, _ := cmd.Flags().GetStringSlice("target")
		priority, _ := cmd.Flags().GetString("priority")
		correlation, _ := cmd.Flags().GetString("correlation")
		payloadFlags, _ := cmd.Flags().GetStringArray("data")

		payload, err := parsePayload(payloadFlags)
		if err != nil {
			return err
		}

		event := &model.Event{
			Type:          args[0],
			Source:        source,
			Targets:       targets,
			Payload:       payload,
			Priority:      model.Priority(priority),
			CorrelationID: correlation,
		}

		result, err := relayClient.PublishEvent(context.Background(), event)
		if err != nil {
			return fmt.Errorf("publishing event: %w", err)
		}

		if jsonOutput {
			printJSON(result)
		} else {
			fmt.Printf("Published %s (%d subscribers notified)\n",
				result.EventID, result.SubscribersNotified)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringP("source", "s", "cli", "source system name")
	publishCmd.Flags().StringSliceP("target", "t", nil, "target system (repeatable)")
	publishCmd.Flags().String("priority", "", "priority (low, normal, high)")
	publishCmd.Flags().String("correlation", "", "correlation id linking related events")
	publishCmd.Flags().StringArrayP("data", "d", nil, "payload field (key=value, repeatable)")
}
