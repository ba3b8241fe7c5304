// Package ledger persists which orders have already been printed so that
// redelivered queue messages do not print the same label twice.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/redis/go-redis/v9"
)

// Client manages Redis ledger operations
type Client struct {
	rdb       *redis.Client
	keyPrefix string
	opTimeout time.Duration
	log       *log.Logger
}

// NewClient creates a new ledger client
func NewClient(cfg *config.LedgerConfig, logger *log.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		rdb:       rdb,
		keyPrefix: cfg.KeyPrefix,
		opTimeout: cfg.OpTimeout,
		log:       logger,
	}, nil
}

// recordKey returns the list key holding the record documents of one (event, order) pair
func (c *Client) recordKey(eventID string, order int) string {
	return fmt.Sprintf("%s:%s:%d", c.keyPrefix, eventID, order)
}

// indexKey returns the set key indexing the printed order numbers of one event
func (c *Client) indexKey(eventID string) string {
	return c.keyPrefix + ":" + eventID
}

// opContext bounds a single ledger operation so a stalled Redis node cannot
// hold up the delivery loop indefinitely
func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// HasPrinted reports whether at least one record exists for the given event
// and order number. Callers treat an error as "not printed": an extra print
// beats a missed one.
func (c *Client) HasPrinted(ctx context.Context, eventID string, order int) (bool, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	count, err := c.rdb.LLen(ctx, c.recordKey(eventID, order)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query ledger for event %s order %d: %w", eventID, order, err)
	}

	return count > 0, nil
}

// RecordPrinted appends a record for the given event and returns it with the
// ledger-assigned fields filled in. The record ID is a fresh UUID and the
// print timestamp comes from the Redis server clock so that records written
// by different hosts stay comparable.
func (c *Client) RecordPrinted(ctx context.Context, eventID string, rec Record) (Record, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	rec.ID = uuid.NewString()
	rec.PrintedAt = c.serverTime(ctx)

	doc := encodeRecord(rec)

	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, c.recordKey(eventID, rec.OrderNumber), doc)
	pipe.SAdd(ctx, c.indexKey(eventID), rec.OrderNumber)

	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("failed to record print for event %s order %d: %w", eventID, rec.OrderNumber, err)
	}

	return rec, nil
}

// serverTime reads the Redis server clock, falling back to the local clock
// when the TIME command fails
func (c *Client) serverTime(ctx context.Context) time.Time {
	t, err := c.rdb.Time(ctx).Result()
	if err != nil {
		c.log.Warn("Failed to read Redis server time, using local clock: %v", err)
		return time.Now().UTC()
	}
	return t.UTC()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
