package service

import "github.com/stemsi/exam-engine/internal/model"

// AnswerKey maps a question id to its correct index.
type AnswerKey map[model.ID]int

// NewAnswerKey builds the key from fetched questions, keeping only ids in allowed.
func NewAnswerKey(questions []model.Question, allowed []model.ID) AnswerKey {
	inSet := make(map[model.ID]struct{}, len(allowed))
	for _, id := range allowed {
		inSet[id] = struct{}{}
	}

	key := make(AnswerKey, len(questions))
	for _, q := range questions {
		if _, ok := inSet[q.ID]; ok {
			key[q.ID] = q.CorrectIndex
		}
	}
	return key
}

// normalizeIndex maps negative selections to NoAnswer.
func normalizeIndex(i int) int {
	if i < 0 {
		return model.NoAnswer
	}
	return i
}

// ScoreAnswers returns the answers to record and the number that match key.
// Only the first answer per question id is kept. Answers for ids outside the
// key are recorded but never score.
func ScoreAnswers(answers []model.Answer, key AnswerKey) ([]model.Answer, int) {
	recorded := make([]model.Answer, 0, len(answers))
	seen := make(map[model.ID]struct{}, len(answers))
	score := 0

	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}

		a.SelectedIndex = normalizeIndex(a.SelectedIndex)
		recorded = append(recorded, a)

		if correct, ok := key[a.QuestionID]; ok && a.SelectedIndex != model.NoAnswer && a.SelectedIndex == correct {
			score++
		}
	}
	return recorded, score
}
