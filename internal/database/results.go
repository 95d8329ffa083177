// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/M1chU02/TriviaQuiz/internal/cache"
)

// EnsureResultsSchema creates the quiz_results table if it does not exist.
// The historian calls this once at startup.
func EnsureResultsSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS quiz_results (
			id BIGSERIAL PRIMARY KEY,
			lobby_id TEXT NOT NULL,
			category_name TEXT NOT NULL,
			num_questions INT NOT NULL,
			results JSONB NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := DB.Exec(ctx, q); err != nil {
		return fmt.Errorf("creating quiz_results table: %w", err)
	}
	return nil
}

// InsertQuizResults persists a batch of quiz result records in one
// transaction.
func InsertQuizResults(ctx context.Context, records []cache.QuizResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning results tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := `
		INSERT INTO quiz_results (lobby_id, category_name, num_questions, results, ended_at)
		VALUES ($1, $2, $3, $4, to_timestamp($5 / 1000.0))
	`
	for _, rec := range records {
		scoreboard, err := json.Marshal(rec.Results)
		if err != nil {
			return fmt.Errorf("marshaling scoreboard for lobby %s: %w", rec.LobbyID, err)
		}
		if _, err := tx.Exec(ctx, q, rec.LobbyID, rec.CategoryName, rec.NumQuestions, scoreboard, rec.EndedAt); err != nil {
			return fmt.Errorf("inserting result for lobby %s: %w", rec.LobbyID, err)
		}
	}

	return tx.Commit(ctx)
}
