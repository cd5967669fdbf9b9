package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mathquiz-service/internal/domain"
)

// QuizRepository abstracts how quizzes are stored (in-memory, Postgres, etc).
type QuizRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Quiz, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
	Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	// Update replaces the mutable fields of an existing quiz. Returns
	// domain.ErrQuizNotFound if the record no longer exists.
	Update(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id int64) error
}

// AnswerSource supplies the answer key for a persisted quiz (possibly cached).
type AnswerSource interface {
	CorrectAnswers(ctx context.Context, quizID int64) ([]int64, error)
}

// QuizService contains the quiz lifecycle use cases. Each call is a single
// linear flow with no cross-request state; all mutable state lives in the
// repository.
type QuizService struct {
	quizzes   QuizRepository
	answers   AnswerSource
	generator *Generator
	scorer    *Scorer
	logger    *log.Logger
	now       func() time.Time
}

func NewQuizService(quizzes QuizRepository, answers AnswerSource, generator *Generator, scorer *Scorer, logger *log.Logger) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		answers:   answers,
		generator: generator,
		scorer:    scorer,
		logger:    logger,
		now:       time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(quizzes QuizRepository, answers AnswerSource, generator *Generator, scorer *Scorer, logger *log.Logger, now func() time.Time) *QuizService {
	s := NewQuizService(quizzes, answers, generator, scorer, logger)
	s.now = now
	return s
}

// GenerateQuestions produces count candidate questions within the [1, 30]
// policy range.
func (s *QuizService) GenerateQuestions(count int) ([]string, error) {
	return s.generator.Generate(count)
}

// Create validates the submission, computes the answer key and score in strict
// mode, and persists a new quiz owned by ownerID.
func (s *QuizService) Create(ctx context.Context, ownerID string, questions []string, userAnswers []*int64) (domain.QuizWithAnswers, error) {
	if ownerID == "" {
		return domain.QuizWithAnswers{}, domain.ErrUnauthenticated
	}
	if err := validateSubmission(questions, userAnswers); err != nil {
		return domain.QuizWithAnswers{}, err
	}

	score, correct, err := s.scorer.ScoreQuestions(questions, userAnswers)
	if err != nil {
		return domain.QuizWithAnswers{}, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}

	quiz := domain.Quiz{
		OwnerID:     ownerID,
		Questions:   questions,
		UserAnswers: userAnswers,
		Score:       score,
		CreatedAt:   s.now(),
	}
	if err := checkScoreInvariant(quiz); err != nil {
		return domain.QuizWithAnswers{}, err
	}

	persisted, err := s.quizzes.Insert(ctx, quiz)
	if err != nil {
		return domain.QuizWithAnswers{}, fmt.Errorf("%w: insert: %v", domain.ErrPersistence, err)
	}
	return domain.QuizWithAnswers{Quiz: persisted, CorrectAnswers: correct}, nil
}

// Update replaces the submitted answers of an existing quiz and re-scores it.
// Only the quiz owner may update it.
func (s *QuizService) Update(ctx context.Context, requesterID string, quizID int64, userAnswers []*int64) (domain.QuizWithAnswers, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return domain.QuizWithAnswers{}, lookupErr(err)
	}
	if len(userAnswers) != len(quiz.Questions) {
		return domain.QuizWithAnswers{}, fmt.Errorf("%w: expected %d answers, got %d", domain.ErrValidation, len(quiz.Questions), len(userAnswers))
	}
	if err := decisionErr(Authorize(requesterID, quiz.OwnerID)); err != nil {
		return domain.QuizWithAnswers{}, err
	}

	correct, err := s.answers.CorrectAnswers(ctx, quiz.ID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.QuizWithAnswers{}, domain.ErrQuizNotFound
		}
		return domain.QuizWithAnswers{}, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}

	quiz.UserAnswers = userAnswers
	quiz.Score = s.scorer.Score(userAnswers, correct)
	if err := checkScoreInvariant(quiz); err != nil {
		return domain.QuizWithAnswers{}, err
	}

	if err := s.quizzes.Update(ctx, quiz); err != nil {
		// Concurrent deletion surfaces as absence, not a generic failure.
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.QuizWithAnswers{}, domain.ErrQuizNotFound
		}
		return domain.QuizWithAnswers{}, fmt.Errorf("%w: update: %v", domain.ErrPersistence, err)
	}
	return domain.QuizWithAnswers{Quiz: quiz, CorrectAnswers: correct}, nil
}

// Delete removes a quiz. Only the quiz owner may delete it.
func (s *QuizService) Delete(ctx context.Context, requesterID string, quizID int64) error {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return lookupErr(err)
	}
	if err := decisionErr(Authorize(requesterID, quiz.OwnerID)); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("%w: delete: %v", domain.ErrPersistence, err)
	}
	return nil
}

// ListForOwner returns the requester's quizzes with their answer keys. A quiz
// whose key cannot be computed is logged and skipped rather than aborting the
// whole listing.
func (s *QuizService) ListForOwner(ctx context.Context, requesterID string) ([]domain.QuizWithAnswers, error) {
	if requesterID == "" {
		return nil, domain.ErrUnauthenticated
	}
	quizzes, err := s.quizzes.FindAllByOwner(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", domain.ErrPersistence, err)
	}

	result := make([]domain.QuizWithAnswers, 0, len(quizzes))
	for _, quiz := range quizzes {
		correct, err := s.answers.CorrectAnswers(ctx, quiz.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("skipping quiz %d in listing: %v", quiz.ID, err)
			}
			continue
		}
		result = append(result, domain.QuizWithAnswers{Quiz: quiz, CorrectAnswers: correct})
	}
	return result, nil
}

func validateSubmission(questions []string, userAnswers []*int64) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: questions must not be empty", domain.ErrValidation)
	}
	if len(userAnswers) != len(questions) {
		return fmt.Errorf("%w: expected %d answers, got %d", domain.ErrValidation, len(questions), len(userAnswers))
	}
	for i, question := range questions {
		if question == "" {
			return fmt.Errorf("%w: question %d is empty", domain.ErrValidation, i)
		}
	}
	return nil
}

func checkScoreInvariant(quiz domain.Quiz) error {
	if quiz.Score < 0 || quiz.Score > len(quiz.Questions) {
		return fmt.Errorf("%w: score %d out of [0, %d]", domain.ErrInvariant, quiz.Score, len(quiz.Questions))
	}
	return nil
}

func lookupErr(err error) error {
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.ErrQuizNotFound
	}
	return fmt.Errorf("%w: lookup: %v", domain.ErrPersistence, err)
}

// RepositoryAnswerSource computes answer keys straight from stored questions.
// Deployments with Redis wrap it (or the Postgres loader) in the answer cache.
type RepositoryAnswerSource struct {
	quizzes QuizRepository
	scorer  *Scorer
}

func NewRepositoryAnswerSource(quizzes QuizRepository, scorer *Scorer) *RepositoryAnswerSource {
	return &RepositoryAnswerSource{quizzes: quizzes, scorer: scorer}
}

func (r *RepositoryAnswerSource) CorrectAnswers(ctx context.Context, quizID int64) ([]int64, error) {
	quiz, err := r.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return r.scorer.AnswerKey(quiz.Questions)
}
