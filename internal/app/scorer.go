package app

import (
	"fmt"

	"mathquiz-service/internal/domain"
)

// Scorer counts positional matches between submitted and correct answers.
// It is pure and safe for concurrent use.
type Scorer struct {
	evaluator *Evaluator
}

func NewScorer(evaluator *Evaluator) *Scorer {
	return &Scorer{evaluator: evaluator}
}

// Score counts positions where the submitted answer equals the correct one.
// A nil submission never matches. Sequences are expected to be equal length;
// extra positions on either side score zero.
func (s *Scorer) Score(userAnswers []*int64, correctAnswers []int64) int {
	score := 0
	for i, answer := range userAnswers {
		if i >= len(correctAnswers) {
			break
		}
		if answer != nil && *answer == correctAnswers[i] {
			score++
		}
	}
	return score
}

// ScoreQuestions derives the answer key from the questions in strict mode and
// scores against it. A question that fails to evaluate is fatal for the whole
// call: a stored quiz that cannot be re-evaluated is corrupted state, not a
// per-item skip.
func (s *Scorer) ScoreQuestions(questions []string, userAnswers []*int64) (int, []int64, error) {
	correct, err := s.AnswerKey(questions)
	if err != nil {
		return 0, nil, err
	}
	return s.Score(userAnswers, correct), correct, nil
}

// AnswerKey evaluates every question in strict mode.
func (s *Scorer) AnswerKey(questions []string) ([]int64, error) {
	key := make([]int64, len(questions))
	for i, question := range questions {
		result, err := s.evaluator.Evaluate(question)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d %q: %w", domain.ErrScoring, i, question, err)
		}
		key[i] = result
	}
	return key, nil
}
