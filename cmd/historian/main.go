// cmd/historian/main.go is an asynchronous service that pops finished quiz
// results from the Redis queue and persists them to PostgreSQL. The quiz
// server itself keeps no durable state; this sidecar is the only component
// that touches the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/M1chU02/TriviaQuiz/internal/cache"
	"github.com/M1chU02/TriviaQuiz/internal/database"
)

// HistorianService drains the results queue into the database in small
// batches.
type HistorianService struct {
	redisClient *redis.Client
	queueName   string
	batchSize   int
	flushDelay  time.Duration

	batchMu sync.Mutex
	batch   []cache.QuizResultRecord

	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		queueName:   getEnv("RESULTS_QUEUE_NAME", cache.DefaultQueueName),
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]cache.QuizResultRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects the database, ensures the schema, and drains the queue until
// the context is cancelled.
func (hs *HistorianService) Run() {
	database.ConnectDB()
	if err := database.EnsureResultsSchema(hs.ctx); err != nil {
		log.Fatalf("failed to ensure results schema: %v", err)
	}

	go hs.readRedisLoop()

	log.Println("quiz-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatch()
	log.Println("quiz-historian shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve result records from the
// Redis queue, flushing the batch on a timer or when it fills.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatch()

		default:
			// BLPop with a short timeout so cancellation is noticed.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, hs.queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record cache.QuizResultRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid result record: %v\n", err)
				continue
			}
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record and flushes if the threshold is reached.
func (hs *HistorianService) appendToBatch(record cache.QuizResultRecord) {
	hs.batchMu.Lock()
	full := false
	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		full = true
	}
	hs.batchMu.Unlock()

	if full {
		hs.flushBatch()
	}
}

// flushBatch writes the current batch to the database in one transaction.
func (hs *HistorianService) flushBatch() {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]cache.QuizResultRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.InsertQuizResults(ctx, batchCopy); err != nil {
		log.Printf("[ERROR] flushBatch: %v\n", err)
		return
	}
	log.Printf("Flushed %d quiz results to DB.\n", len(batchCopy))
}

func main() {
	hs := NewHistorianService()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		hs.cancelFn()
	}()

	hs.Run()
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
