package domain

import "time"

// Quiz is a persisted math quiz owned by a single user. Questions are fixed at
// creation; only the submitted answers and the derived score change afterwards.
type Quiz struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Questions   []string  `json:"questions"`
	UserAnswers []*int64  `json:"userAnswers"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"createdAt"`
}

// QuizWithAnswers pairs a quiz with its computed answer key. The key is derived
// data and is never persisted alongside the quiz.
type QuizWithAnswers struct {
	Quiz
	CorrectAnswers []int64 `json:"correctAnswers"`
}

// QuestionAnswer pairs one expression with its evaluated result.
type QuestionAnswer struct {
	Question      string `json:"question"`
	CorrectAnswer int64  `json:"correctAnswer"`
}

// AccessDecision is the outcome of checking a requester against a quiz owner.
type AccessDecision int

const (
	Permit AccessDecision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d AccessDecision) String() string {
	switch d {
	case Permit:
		return "permit"
	case DenyUnauthenticated:
		return "deny-unauthenticated"
	case DenyForbidden:
		return "deny-forbidden"
	default:
		return "unknown"
	}
}
