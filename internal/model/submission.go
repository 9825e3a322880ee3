package model

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// SubmissionStatus enumerates the states of a timed attempt.
type SubmissionStatus string

const (
	SubmissionStatusStarted   SubmissionStatus = "started"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusExpired   SubmissionStatus = "expired"
)

// NoAnswer marks a missing or malformed selection.
const NoAnswer = -1

// maxSelectedIndex caps accepted indexes well above MaxQuestionOptions so
// oversized numbers never overflow int on any platform.
const maxSelectedIndex = math.MaxInt32

// Answer is one recorded selection.
type Answer struct {
	QuestionID    ID  `json:"question_id"`
	SelectedIndex int `json:"selected_index"`
}

// Submission is one user's timed attempt at an exam.
// QuestionIDs is fixed at creation. Answers, Score and SubmittedAt are
// written once, together with a terminal Status.
type Submission struct {
	ID          ID               `json:"id"`
	UserID      ID               `json:"user_id"`
	ExamID      ID               `json:"exam_id"`
	QuestionIDs []ID             `json:"question_ids"`
	Answers     []Answer         `json:"answers"`
	Score       *int             `json:"score"`
	StartedAt   time.Time        `json:"started_at"`
	SubmittedAt *time.Time       `json:"submitted_at"`
	Status      SubmissionStatus `json:"status"`
}

// IsFinalized reports whether the submission left the started state.
func (s *Submission) IsFinalized() bool {
	return s.Status != SubmissionStatusStarted
}

// Deadline is the last instant at which a submit counts as on time.
func (s *Submission) Deadline(duration time.Duration) time.Time {
	return s.StartedAt.Add(duration)
}

// Finalization carries the single write that closes a submission.
type Finalization struct {
	Answers     []Answer
	Score       int
	SubmittedAt time.Time
	Status      SubmissionStatus
}

// SubmitExamRequest is the payload for finalizing a submission.
type SubmitExamRequest struct {
	SubmissionID string            `json:"submission_id" binding:"required,uuid"`
	Answers      []SubmittedAnswer `json:"answers" binding:"max=200,dive"`
}

// SubmittedAnswer keeps the selection raw so a malformed value degrades to
// NoAnswer instead of failing the whole payload.
type SubmittedAnswer struct {
	QuestionID    string          `json:"question_id" binding:"required,uuid"`
	SelectedIndex json.RawMessage `json:"selected_index"`
}

// NormalizeSelectedIndex returns the index encoded in raw when it is a
// non-negative integral JSON number, and NoAnswer otherwise.
func NormalizeSelectedIndex(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NoAnswer
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		// strings, booleans, objects, null
		return NoAnswer
	}
	if f < 0 || f > maxSelectedIndex || f != math.Trunc(f) {
		return NoAnswer
	}
	return int(f)
}
