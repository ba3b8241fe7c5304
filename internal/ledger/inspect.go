package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// Records returns every record stored for the given event and order number,
// oldest first. Documents that no longer parse are skipped with a warning
// rather than failing the whole read.
func (c *Client) Records(ctx context.Context, eventID string, order int) ([]Record, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	docs, err := c.rdb.LRange(ctx, c.recordKey(eventID, order), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger records for event %s order %d: %w", eventID, order, err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := decodeRecord([]byte(doc))
		if err != nil {
			c.log.Warn("Skipping unreadable ledger record for event %s order %d: %v", eventID, order, err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// PrintedOrders returns the order numbers recorded for the given event,
// sorted ascending
func (c *Client) PrintedOrders(ctx context.Context, eventID string) ([]int, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	members, err := c.rdb.SMembers(ctx, c.indexKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list printed orders for event %s: %w", eventID, err)
	}

	orders := make([]int, 0, len(members))
	for _, member := range members {
		order, err := strconv.Atoi(member)
		if err != nil {
			c.log.Warn("Skipping non-numeric ledger index entry %q for event %s", member, eventID)
			continue
		}
		orders = append(orders, order)
	}

	sort.Ints(orders)
	return orders, nil
}
