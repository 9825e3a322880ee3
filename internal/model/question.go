package model

import (
	"errors"
	"fmt"
	"time"
)

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option count bounds for a multiple-choice question.
const (
	MinQuestionOptions = 2
	MaxQuestionOptions = 10
)

var ErrQuestionTextRequired = errors.New("question text is required")

// Question is a multiple-choice item in the question bank.
// CorrectIndex is the hidden answer key and must never reach a client
// before the submission it belongs to is finalized.
type Question struct {
	ID           ID         `json:"id" yaml:"id"`
	Text         string     `json:"text" yaml:"text"`
	Options      []string   `json:"options" yaml:"options"`
	CorrectIndex int        `json:"correct_index" yaml:"correct_index"`
	Tags         []string   `json:"tags" yaml:"tags"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	IsActive     bool       `json:"is_active" yaml:"is_active"`
	CreatedAt    time.Time  `json:"created_at" yaml:"-"`
}

// QuestionView is the safe projection of a question: no answer key.
type QuestionView struct {
	ID      ID       `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// View strips the correct answer.
func (q *Question) View() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Options: q.Options}
}

// Validate checks option bounds, the answer index and the difficulty enum.
func (q *Question) Validate() error {
	if q.Text == "" {
		return ErrQuestionTextRequired
	}
	if n := len(q.Options); n < MinQuestionOptions || n > MaxQuestionOptions {
		return fmt.Errorf("question must have %d-%d options, got %d", MinQuestionOptions, MaxQuestionOptions, n)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range for %d options", q.CorrectIndex, len(q.Options))
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	return nil
}
