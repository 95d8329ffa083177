// internal/quiz/game.go
package quiz

// ScorePerCorrectAnswer is the fixed increment awarded for a correct answer.
const ScorePerCorrectAnswer = 10

// Start flips the lobby into the quiz phase and broadcasts the first
// question. Only the host's current connection may start, and only once; the
// transition is one-directional for the lobby's lifetime.
func (l *Lobby) Start(requesterConnID string) error {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	if requesterConnID != l.hostConnIDUnsafe() {
		return ErrNotHost
	}
	if l.GameStarted {
		return ErrAlreadyStarted
	}

	l.GameStarted = true
	l.broadcastUnsafe(map[string]interface{}{
		"type":          "quizStarted",
		"question":      l.Questions[l.CurrentQuestion],
		"questionIndex": l.CurrentQuestion,
	})
	return nil
}

// Answer applies one answer submission to the shared question index.
//
// The index is shared by the whole room: the first accepted answer for the
// current question advances everyone. Clients echo the questionIndex they
// received with the question; a submission targeting any other index is
// stale (another answer already advanced past it) and is dropped without
// scoring or advancing. A caller that has no index to echo passes -1, which
// targets the current question.
//
// A submission from a connection that is not a member skips scoring but
// still advances, so a stray client can never stall the quiz for the room.
// Returns (true, results) when this answer finished the quiz; the caller is
// responsible for deleting the emptied lobby from its store.
func (l *Lobby) Answer(connID, answer string, questionIndex int) (bool, []Result, error) {
	l.Mu.Lock()
	defer l.Mu.Unlock()

	if !l.GameStarted {
		return false, nil, ErrNotStarted
	}
	// A caller can hold a stale *Lobby after another answer finished the
	// quiz and the store deleted it. Such submissions are dropped like any
	// other stale answer.
	if l.CurrentQuestion >= len(l.Questions) {
		return false, nil, nil
	}
	if questionIndex >= 0 && questionIndex != l.CurrentQuestion {
		return false, nil, nil
	}

	question := l.Questions[l.CurrentQuestion]
	for _, p := range l.Players {
		if p.Conn.ID == connID {
			if answer == question.CorrectAnswer {
				p.Score += ScorePerCorrectAnswer
			}
			break
		}
	}

	l.CurrentQuestion++

	if l.CurrentQuestion >= len(l.Questions) {
		results := make([]Result, 0, len(l.Players))
		for _, p := range l.Players {
			results = append(results, Result{Username: p.Username, Score: p.Score})
		}
		l.broadcastUnsafe(map[string]interface{}{
			"type":    "quizEnded",
			"results": results,
		})
		return true, results, nil
	}

	l.broadcastUnsafe(map[string]interface{}{
		"type":          "nextQuestion",
		"question":      l.Questions[l.CurrentQuestion],
		"questionIndex": l.CurrentQuestion,
	})
	return false, nil, nil
}
