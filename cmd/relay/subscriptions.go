package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Short:   "List registered subscriptions",
	GroupID: "subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := relayClient.ListSubscriptions(context.Background())
		if err != nil {
			return fmt.Errorf("listing subscriptions: %w", err)
		}

		if jsonOutput {
			printJSON(subs)
		} else {
			printSubscriptionTable(subs)
		}
		return nil
	},
}
