// Package cache wires the Redis replay queue: every play in every room is
// pushed to a list that an offline consumer can drain to reconstruct games.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the replay records are pushed onto.
var DefaultQueueName = "ddz_plays"

// PlayRecord is one played or passed hand, in the order it happened. Seq is
// the room's event sequence number at the time of the play.
type PlayRecord struct {
	RoomID    string    `json:"room_id"`
	GameID    uuid.UUID `json:"game_id"`
	Seq       uint64    `json:"seq"`
	Account   string    `json:"account"`
	Seat      int       `json:"seat"`
	Pass      bool      `json:"pass"`
	Cards     []int     `json:"cards,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishPlayRecord serializes the record to JSON and pushes it onto the
// replay queue.
func PublishPlayRecord(ctx context.Context, record PlayRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal PlayRecord: %w", err)
	}

	queueName := getEnv("REPLAY_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
