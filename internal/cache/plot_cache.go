package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"surveylens/internal/plot"
)

// PlotCache keeps derived plot payloads in redis for a short TTL so
// repeated requests against the same upload do not re-stream the file.
// Upload ids are uuid-generated and never reused, so entries for deleted
// uploads simply age out.
type PlotCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPlotCache(client *redisv9.Client, ttl time.Duration) *PlotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlotCache{client: client, ttl: ttl}
}

func (c *PlotCache) Get(ctx context.Context, uploadID string, kind plot.Kind, xAxis string, yAxes []string) (*plot.Result, bool, error) {
	raw, err := c.client.Get(ctx, c.key(uploadID, kind, xAxis, yAxes)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get plot data failed: %w", err)
	}

	var result plot.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached plot data failed: %w", err)
	}
	return &result, true, nil
}

func (c *PlotCache) Set(ctx context.Context, uploadID string, kind plot.Kind, xAxis string, yAxes []string, result *plot.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal plot cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(uploadID, kind, xAxis, yAxes), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set plot data failed: %w", err)
	}
	return nil
}

func (c *PlotCache) key(uploadID string, kind plot.Kind, xAxis string, yAxes []string) string {
	digest := sha256.Sum256([]byte(string(kind) + "\x00" + xAxis + "\x00" + strings.Join(yAxes, "\x00")))
	return fmt.Sprintf("plot:data:%s:%s", uploadID, hex.EncodeToString(digest[:16]))
}
