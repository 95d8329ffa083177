// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the server pushes finished quiz results
// onto for the historian to drain.
var DefaultQueueName = "quiz_results"

// PlayerResult is one scoreboard line inside a QuizResultRecord.
type PlayerResult struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// QuizResultRecord captures the outcome of one finished quiz for the
// historian service.
type QuizResultRecord struct {
	LobbyID      string         `json:"lobby_id"`
	CategoryName string         `json:"category_name"`
	NumQuestions int            `json:"num_questions"`
	Results      []PlayerResult `json:"results"`
	EndedAt      int64          `json:"ended_at"`
}

// Publisher pushes quiz results onto a Redis queue. A nil Publisher is valid
// and drops everything, so the server runs fine without Redis configured.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// Connect initializes a Publisher from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
//   - RESULTS_QUEUE_NAME (optional, default DefaultQueueName)
func Connect() (*Publisher, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Publisher{
		rdb:   rdb,
		queue: getEnv("RESULTS_QUEUE_NAME", DefaultQueueName),
	}, nil
}

// PublishQuizResult serializes the record to JSON and pushes it onto the
// queue. Does not block the caller beyond one quick network send.
func (p *Publisher) PublishQuizResult(ctx context.Context, record QuizResultRecord) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal QuizResultRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", p.queue, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
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
