package memory

import (
	"context"
	"sync"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// QuizRepository is an in-memory implementation of app.QuizRepository,
// useful for tests and running without Postgres.
type QuizRepository struct {
	mu      sync.RWMutex
	nextID  int64
	quizzes map[int64]domain.Quiz
}

var _ app.QuizRepository = (*QuizRepository)(nil)

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		nextID:  1,
		quizzes: make(map[int64]domain.Quiz),
	}
}

func (r *QuizRepository) FindByID(_ context.Context, id int64) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (r *QuizRepository) FindAllByOwner(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Insertion order by id, matching the Postgres adapter.
	result := make([]domain.Quiz, 0)
	for id := int64(1); id < r.nextID; id++ {
		if quiz, ok := r.quizzes[id]; ok && quiz.OwnerID == ownerID {
			result = append(result, cloneQuiz(quiz))
		}
	}
	return result, nil
}

func (r *QuizRepository) Insert(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.nextID
	r.nextID++
	r.quizzes[quiz.ID] = cloneQuiz(quiz)
	return quiz, nil
}

func (r *QuizRepository) Update(_ context.Context, quiz domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	stored.UserAnswers = cloneAnswers(quiz.UserAnswers)
	stored.Score = quiz.Score
	r.quizzes[quiz.ID] = stored
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	return nil
}

// cloneQuiz copies the slices so callers cannot mutate stored state.
func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	quiz.Questions = append([]string(nil), quiz.Questions...)
	quiz.UserAnswers = cloneAnswers(quiz.UserAnswers)
	return quiz
}

func cloneAnswers(answers []*int64) []*int64 {
	out := make([]*int64, len(answers))
	for i, answer := range answers {
		if answer != nil {
			v := *answer
			out[i] = &v
		}
	}
	return out
}
