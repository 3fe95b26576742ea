package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
)

// latestTTL bounds how long a stale board survives a stopped daemon.
const latestTTL = 2 * time.Minute

// BoardChannel is the pub/sub channel for a mosque's boards.
func BoardChannel(id string) string { return fmt.Sprintf("masjid:%s:board", id) }

// LatestKey holds the most recent board JSON.
func LatestKey(id string) string { return fmt.Sprintf("masjid:%s:board:latest", id) }

// Redis publishes boards on a channel and keeps the latest under a key, so
// other processes can fan them out to their own screens.
type Redis struct {
	rdb *redis.Client
	id  string
}

// NewRedis publishes for mosque id through rdb.
func NewRedis(rdb *redis.Client, id string) *Redis {
	return &Redis{rdb: rdb, id: id}
}

// Publish implements board.Sink.
func (r *Redis) Publish(ctx context.Context, b board.Board) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding board: %w", err)
	}
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, BoardChannel(r.id), payload)
		p.Set(ctx, LatestKey(r.id), payload, latestTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publishing board to redis: %w", err)
	}
	return nil
}

// Latest reads the most recent board another process published.
func (r *Redis) Latest(ctx context.Context) (board.Board, error) {
	var b board.Board
	data, err := r.rdb.Get(ctx, LatestKey(r.id)).Bytes()
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("decoding board: %w", err)
	}
	return b, nil
}
