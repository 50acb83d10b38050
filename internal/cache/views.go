package cache

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlushFunc is called to apply buffered view counts to the catalog.
type FlushFunc func(ctx context.Context, counts map[string]int64) error

// drainScript atomically takes the whole counter hash.
var drainScript = redis.NewScript(`
	local counts = redis.call("HGETALL", KEYS[1])
	redis.call("DEL", KEYS[1])
	return counts
`)

// RedisViewCounter buffers listing view-count increments in Redis and
// flushes them to the catalog in the background, so a burst of page views
// does not turn into a burst of snapshot writes.
type RedisViewCounter struct {
	client      *redis.Client
	flushFunc   FlushFunc
	flushTicker *time.Ticker
	stopFlush   chan struct{}
	stopOnce    sync.Once
	keyPrefix   string
}

// RedisViewCounterConfig holds configuration for the view counter.
type RedisViewCounterConfig struct {
	Addr          string
	Password      string
	DB            int
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisViewCounter creates a Redis-backed view counter.
func NewRedisViewCounter(cfg RedisViewCounterConfig, flushFunc FlushFunc) (*RedisViewCounter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "autohub:views"
	}
	flushInterval := cfg.FlushInterval
	if flushInterval == 0 {
		flushInterval = 30 * time.Second
	}

	c := &RedisViewCounter{
		client:      client,
		flushFunc:   flushFunc,
		flushTicker: time.NewTicker(flushInterval),
		stopFlush:   make(chan struct{}),
		keyPrefix:   keyPrefix,
	}

	go c.backgroundFlush()

	log.Printf("[RedisViewCounter] Started - prefix:%s, flush:%v", keyPrefix, flushInterval)
	return c, nil
}

func (c *RedisViewCounter) counterKey() string {
	return c.keyPrefix + ":pending"
}

// Add records one view of a listing.
func (c *RedisViewCounter) Add(ctx context.Context, carID string) error {
	return c.client.HIncrBy(ctx, c.counterKey(), carID, 1).Err()
}

// Count returns the number of listings with unflushed views.
func (c *RedisViewCounter) Count(ctx context.Context) (int64, error) {
	return c.client.HLen(ctx, c.counterKey()).Result()
}

// backgroundFlush periodically drains the counter hash into the catalog.
func (c *RedisViewCounter) backgroundFlush() {
	for {
		select {
		case <-c.flushTicker.C:
			c.flush()
		case <-c.stopFlush:
			return
		}
	}
}

// flush drains the hash atomically and applies the counts. On apply
// failure the counts are re-added so no view is lost.
func (c *RedisViewCounter) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// HGETALL comes back from Lua as a flat field/value array.
	raw, err := drainScript.Run(ctx, c.client, []string{c.counterKey()}).Slice()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[RedisViewCounter] Drain failed: %v", err)
		}
		return
	}
	if len(raw) == 0 {
		return
	}

	counts := make(map[string]int64, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		id, ok := raw[i].(string)
		if !ok {
			continue
		}
		v, ok := raw[i+1].(string)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			counts[id] = n
		}
	}
	if len(counts) == 0 {
		return
	}

	if err := c.flushFunc(ctx, counts); err != nil {
		log.Printf("[RedisViewCounter] Flush of %d counters failed, re-buffering: %v", len(counts), err)
		for id, n := range counts {
			c.client.HIncrBy(ctx, c.counterKey(), id, n)
		}
		return
	}

	log.Printf("[RedisViewCounter] Flushed view counts for %d listings", len(counts))
}

// Close flushes remaining counts and releases the Redis connection.
func (c *RedisViewCounter) Close() error {
	c.stopOnce.Do(func() {
		c.flushTicker.Stop()
		close(c.stopFlush)
		c.flush()
	})
	return c.client.Close()
}
