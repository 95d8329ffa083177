// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/M1chU02/TriviaQuiz/internal/auth"
	"github.com/M1chU02/TriviaQuiz/internal/cache"
	"github.com/M1chU02/TriviaQuiz/internal/handlers"
	"github.com/M1chU02/TriviaQuiz/internal/middleware"
	"github.com/M1chU02/TriviaQuiz/internal/trivia"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Cache the trivia categories once at startup. A failed fetch leaves the
	// cache empty and category listing degrades to an empty list.
	triviaClient := trivia.NewClient("", logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	triviaClient.FetchCategories(ctx)
	cancel()

	// Results publishing is optional; without Redis the server just skips it.
	results, err := cache.Connect()
	if err != nil {
		logger.Warnf("Redis unavailable, quiz results will not be recorded: %v", err)
		results = nil
	}

	srv := handlers.NewQuizServer(triviaClient, results, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))
	mux.Handle("/", http.FileServer(http.Dir("public")))

	addr := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
