package recorder

import (
	"context"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/redis/go-redis/v9"
)

const DefaultStream = "volscope:snapshots"

// RedisRecorder publishes snapshots to a Redis stream for downstream consumers.
type RedisRecorder struct {
	client  *redis.Client
	stream  string
	timeout time.Duration
}

// NewRedisRecorder connects to addr, a redis:// URL or a plain host:port.
func NewRedisRecorder(addr, stream string) (*RedisRecorder, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return newRedisRecorder(client, stream), nil
}

func newRedisRecorder(client *redis.Client, stream string) *RedisRecorder {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisRecorder{client: client, stream: stream, timeout: 3 * time.Second}
}

func (r *RedisRecorder) RecordSnapshot(snap *Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	// Fields are written in a fixed order.
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: []interface{}{
			"symbol", snap.Symbol,
			"source", snap.Source,
			"lookback", snap.Lookback,
			"window", snap.Window,
			"observations", snap.Observations,
			"as_of", snap.AsOf.UTC().Format("2006-01-02"),
			"last_close", strconv.FormatFloat(snap.LastClose, 'f', -1, 64),
			"annualized_hv", streamFloat(snap.AnnualizedHV),
			"latest_rolling_hv", streamFloat(snap.LatestRollingHV),
			"ts", recordedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}

// streamFloat encodes an absent value as an empty field.
func streamFloat(v optional.Option[float64]) string {
	f, err := v.Take()
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
