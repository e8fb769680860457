package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/groblegark/relay/internal/model"
	"github.com/groblegark/relay/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecordTable(records []*model.Record, total int) {
	color := ui.ShouldUseColor()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT ID\tTYPE\tSOURCE\tPRIORITY\tTRUST\tCONSUMED BY\tRECORDED")
	for _, r := range records {
		consumedBy := r.ConsumedBy
		if consumedBy == "" {
			consumedBy = "-"
		}
		trust := fmt.Sprintf("%.1f", r.TrustScore)
		if !r.Compliant && color {
			trust = ui.RenderMuted(trust + " !")
		} else if !r.Compliant {
			trust += " !"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Event.ID,
			r.Event.Type,
			r.Event.Source,
			r.Event.Priority,
			trust,
			consumedBy,
			r.RecordedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d events (%d total)\n", len(records), total)
}

func printSubscriptionTable(subs map[string]*model.Subscription) {
	systems := make([]string, 0, len(subs))
	for name := range subs {
		systems = append(systems, name)
	}
	sort.Strings(systems)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYSTEM\tEVENT TYPES\tWEBHOOK\tACTIVE")
	for _, name := range systems {
		sub := subs[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
			sub.SystemName,
			strings.Join(sub.EventTypes, ", "),
			sub.WebhookURL,
			sub.Active,
		)
	}
	w.Flush()
	fmt.Printf("\n%d subscriptions\n", len(subs))
}
