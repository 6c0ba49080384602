// Package redis wraps the go-redis client with the readiness check the
// hybrid stores rely on. The shared cache is optional infrastructure: when it
// is down or not configured, callers degrade to in-process state.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	redisReadyChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uplift_redis_ready_checks_total",
		Help: "Readiness probes against the shared cache, by outcome",
	}, []string{"outcome"})
)

// readyProbeTimeout bounds the per-call readiness probe. The probe must
// distinguish "not connected" from "slow", so it stays well under typical
// request deadlines.
const readyProbeTimeout = 150 * time.Millisecond

// Client wraps the go-redis client with a fast readiness probe.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from a URL. Returns nil if the URL is empty
// (shared cache not configured); callers must treat a nil client as never ready.
func New(url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// Ready reports whether the shared cache is currently reachable. It is
// re-evaluated on every call so that recovery is picked up immediately; a
// failed probe never caches its result.
func (c *Client) Ready(ctx context.Context) bool {
	if c == nil || c.Client == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	if err := c.Ping(probeCtx).Err(); err != nil {
		redisReadyChecks.WithLabelValues("down").Inc()
		return false
	}
	redisReadyChecks.WithLabelValues("up").Inc()
	return true
}

// Health checks if the Redis connection is healthy, for readiness probes.
func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("redis not configured")
	}
	return c.Ping(ctx).Err()
}
