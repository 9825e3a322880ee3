package model

import (
	"errors"
	"time"
)

// Exam bounds.
const (
	MinExamDurationSeconds = 60
	MinExamQuestions       = 1
	MaxExamQuestions       = 100
)

var (
	ErrExamTitleRequired   = errors.New("exam title is required")
	ErrExamDurationTooLow  = errors.New("exam duration must be at least 60 seconds")
	ErrExamQuestionsBounds = errors.New("exam question count must be between 1 and 100")
)

// Exam is a template from which timed submissions are started.
type Exam struct {
	ID              ID        `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	DurationSeconds int       `json:"duration_seconds" yaml:"duration_seconds"`
	TotalQuestions  int       `json:"total_questions" yaml:"total_questions"`
	IsActive        bool      `json:"is_active" yaml:"is_active"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
}

// ExamView is the public overview shown before a submission starts.
type ExamView struct {
	ID              ID     `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	TotalQuestions  int    `json:"total_questions"`
}

// View projects the exam onto its public overview.
func (e *Exam) View() ExamView {
	return ExamView{ID: e.ID, Title: e.Title, DurationSeconds: e.DurationSeconds, TotalQuestions: e.TotalQuestions}
}

// Duration returns the time allowed for a submission of this exam.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// Validate checks the catalog constraints on an exam record.
func (e *Exam) Validate() error {
	if e.Title == "" {
		return ErrExamTitleRequired
	}
	if e.DurationSeconds < MinExamDurationSeconds {
		return ErrExamDurationTooLow
	}
	if e.TotalQuestions < MinExamQuestions || e.TotalQuestions > MaxExamQuestions {
		return ErrExamQuestionsBounds
	}
	return nil
}

// StartExamRequest is the payload for starting a submission.
type StartExamRequest struct {
	ExamID string `json:"exam_id" binding:"required,uuid"`
}
