package main

import (
	"context"
	"fmt"

	"github.com/groblegark/relay/internal/model"
	"github.com/spf13/cobra"
)

var subscribeCmd = &cobra.Command{
	Use:     "subscribe <system>",
	Short:   "Register or replace a webhook subscription",
	GroupID: "subscriptions",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventTypes, _ := cmd.Flags().GetStringSlice("events")
		webhookURL, _ := cmd.Flags().GetString("url")
		inactive, _ := cmd.Flags().GetBool("inactive")

		sub := &model.Subscription{
			SystemName: args[0],
			EventTypes: eventTypes,
			WebhookURL: webhookURL,
			Active:     !inactive,
		}

		if err := relayClient.Subscribe(context.Background(), sub); err != nil {
			return fmt.Errorf("subscribing: %w", err)
		}

		if jsonOutput {
			printJSON(sub)
		} else {
			fmt.Printf("Subscribed %s to %d event types\n", sub.SystemName, len(sub.EventTypes))
		}
		return nil
	},
}

func init() {
	subscribeCmd.Flags().StringSliceP("events", "e", nil, "event type to receive (repeatable)")
	subscribeCmd.Flags().StringP("url", "u", "", "webhook URL for delivery")
	subscribeCmd.Flags().Bool("inactive", false, "register the subscription paused")
}
