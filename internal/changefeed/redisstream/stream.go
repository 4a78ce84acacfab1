// Package redisstream implements the change feed on a Redis Stream with a
// consumer group. Entries stay pending until acknowledged and are reclaimed
// from dead consumers, so every change is delivered at least once.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/changefeed"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

const payloadField = "change"

type Options struct {
	Stream    string
	Group     string
	Consumer  string
	Block     time.Duration
	ClaimIdle time.Duration
	MaxLen    int64
	Count     int64
}

type Feed struct {
	rdb  *goredis.Client
	opts Options
	log  zerolog.Logger
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func New(rdb *goredis.Client, opts Options) (*Feed, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}

	if strings.TrimSpace(opts.Stream) == "" {
		return nil, errors.New("stream name required")
	}

	if opts.Count <= 0 {
		opts.Count = 64
	}

	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}

	return &Feed{
		rdb:  rdb,
		opts: opts,
		log:  logger.WithComponent("redis-feed").With().Str("stream", opts.Stream).Logger(),
	}, nil
}

func (f *Feed) Publish(ctx context.Context, change invoice.Change) error {
	raw, err := Encode(change)
	if err != nil {
		return err
	}

	args := &goredis.XAddArgs{
		Stream: f.opts.Stream,
		Values: map[string]any{payloadField: raw},
	}

	if f.opts.MaxLen > 0 {
		args.MaxLen = f.opts.MaxLen
		args.Approx = true
	}

	if err := f.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd: %w", err)
	}

	return nil
}

// Subscribe joins the consumer group and streams deliveries until ctx is
// done. The returned channel is closed when the read loop stops.
func (f *Feed) Subscribe(ctx context.Context) (<-chan changefeed.Delivery, error) {
	if f.opts.Group == "" || f.opts.Consumer == "" {
		return nil, errors.New("group and consumer required to subscribe")
	}

	err := f.rdb.XGroupCreateMkStream(ctx, f.opts.Stream, f.opts.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	out := make(chan changefeed.Delivery)

	go func() {
		defer close(out)

		f.loop(ctx, out)
	}()

	return out, nil
}

func (f *Feed) loop(ctx context.Context, out chan<- changefeed.Delivery) {
	claimStart := "0-0"
	lastClaim := time.Time{}

	for ctx.Err() == nil {
		if f.opts.ClaimIdle > 0 && time.Since(lastClaim) >= f.opts.ClaimIdle {
			claimStart = f.reclaim(ctx, claimStart, out)
			lastClaim = time.Now()
		}

		streams, err := f.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    f.opts.Group,
			Consumer: f.opts.Consumer,
			Streams:  []string{f.opts.Stream, ">"},
			Count:    f.opts.Count,
			Block:    f.opts.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) || ctx.Err() != nil {
				continue
			}

			f.log.Error().Err(err).Msg("xreadgroup failed")

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}

			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				if !f.deliver(ctx, msg, out) {
					return
				}
			}
		}
	}
}

// reclaim takes over entries left pending by consumers idle longer than
// ClaimIdle and returns the cursor for the next pass.
func (f *Feed) reclaim(ctx context.Context, start string, out chan<- changefeed.Delivery) string {
	msgs, next, err := f.rdb.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   f.opts.Stream,
		Group:    f.opts.Group,
		Consumer: f.opts.Consumer,
		MinIdle:  f.opts.ClaimIdle,
		Start:    start,
		Count:    f.opts.Count,
	}).Result()
	if err != nil {
		if ctx.Err() == nil {
			f.log.Warn().Err(err).Msg("xautoclaim failed")
		}

		return start
	}

	for _, msg := range msgs {
		if !f.deliver(ctx, msg, out) {
			break
		}
	}

	return next
}

func (f *Feed) deliver(ctx context.Context, msg goredis.XMessage, out chan<- changefeed.Delivery) bool {
	id := msg.ID
	ack := func(ctx context.Context) error {
		return f.rdb.XAck(ctx, f.opts.Stream, f.opts.Group, id).Err()
	}

	change, err := decodeMessage(msg)
	if err != nil {
		f.log.Warn().Err(err).Str("entry", id).Msg("dropping malformed change")

		if err := ack(ctx); err != nil {
			f.log.Warn().Err(err).Str("entry", id).Msg("failed to ack malformed change")
		}

		return true
	}

	select {
	case out <- changefeed.Delivery{Change: change, Ack: ack}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *Feed) Close() error {
	return f.rdb.Close()
}

func Encode(change invoice.Change) (string, error) {
	raw, err := json.Marshal(change)
	if err != nil {
		return "", fmt.Errorf("encode change: %w", err)
	}

	return string(raw), nil
}

func Decode(raw string) (invoice.Change, error) {
	var change invoice.Change
	if err := json.Unmarshal([]byte(raw), &change); err != nil {
		return invoice.Change{}, fmt.Errorf("decode change: %w", err)
	}

	return change, nil
}

func decodeMessage(msg goredis.XMessage) (invoice.Change, error) {
	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		return invoice.Change{}, fmt.Errorf("entry has no %q field", payloadField)
	}

	return Decode(raw)
}
