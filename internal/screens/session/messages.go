package session

import (
	"time"

	"github.com/abhisek/certifica/internal/questionbank"
)

// questionsReadyMsg carries the generated questions or the failure.
type questionsReadyMsg struct {
	Questions []questionbank.Question
	Origin    string
	Err       error
}

// timerTickMsg is sent every second while the exam is running.
type timerTickMsg time.Time
