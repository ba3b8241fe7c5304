// Package main implements ledgerctl, an operator tool that inspects the
// print ledger. It lists which order numbers of an event have been printed
// and dumps the print records behind a single order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/ledger"
	"github.com/ibs-source/print-consumer/internal/log"
)

var (
	flagEvent = flag.String("event", "", "Event identifier to inspect (required)")
	flagOrder = flag.Int("order", 0, "Order number to dump print records for")
)

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if *flagEvent == "" {
		fmt.Fprintln(os.Stderr, "Usage: ledgerctl -event <event_id> [-order <n>] [-ledger-address <host:port>]")
		return 2
	}

	logger := log.New()
	if cfg.Log.Level != "" {
		logger.SetLevel(cfg.Log.Level)
	}

	client, err := ledger.NewClient(&cfg.Ledger, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to ledger: %v\n", err)
		return 1
	}
	defer func() {
		if err := client.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing ledger client: %v\n", err)
		}
	}()

	ctx := context.Background()

	if orderFlagSet() {
		return dumpRecords(ctx, client, *flagEvent, *flagOrder)
	}
	return listOrders(ctx, client, *flagEvent)
}

// orderFlagSet reports whether -order was given explicitly, since every
// integer including zero and negatives is a valid order number
func orderFlagSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "order" {
			set = true
		}
	})
	return set
}

func listOrders(ctx context.Context, client *ledger.Client, eventID string) int {
	orders, err := client.PrintedOrders(ctx, eventID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list printed orders: %v\n", err)
		return 1
	}

	if len(orders) == 0 {
		fmt.Printf("No printed orders for event %s\n", eventID)
		return 0
	}

	fmt.Printf("--- Event %s: %d printed orders ---\n", eventID, len(orders))
	for _, order := range orders {
		fmt.Printf("%d\n", order)
	}
	return 0
}

func dumpRecords(ctx context.Context, client *ledger.Client, eventID string, order int) int {
	records, err := client.Records(ctx, eventID, order)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read print records: %v\n", err)
		return 1
	}

	if len(records) == 0 {
		fmt.Printf("No print records for event %s order %d\n", eventID, order)
		return 0
	}

	fmt.Printf("--- Event %s, order %d: %d prints ---\n", eventID, order, len(records))
	for _, rec := range records {
		kind := "print"
		if rec.Reprint {
			kind = "reprint"
		}
		fmt.Printf("ID: %s | %s at %s | Printer: %s | Host: %s | Delivery: %s\n",
			rec.ID, kind, rec.PrintedAt.Format(time.RFC3339), rec.PrinterName, rec.Host, rec.DeliveryID)
	}
	return 0
}

func main() {
	os.Exit(run())
}
