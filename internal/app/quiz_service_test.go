package app_test

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
	"mathquiz-service/internal/infra/memory"
)

func TestCreateScoresAndPersists(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if created.Score != 1 {
		t.Fatalf("expected score 1, got %d", created.Score)
	}
	if len(created.CorrectAnswers) != 1 || created.CorrectAnswers[0] != 4 {
		t.Fatalf("unexpected answer key %v", created.CorrectAnswers)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
}

func TestCreateStampsCurrentInstant(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuizRepository()
	evaluator := app.NewEvaluator(nil)
	scorer := app.NewScorer(evaluator)
	instant := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service := app.NewQuizServiceWithClock(repo, app.NewRepositoryAnswerSource(repo, scorer), app.NewGenerator(evaluator), scorer, nil, func() time.Time { return instant })

	created, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.CreatedAt.Equal(instant) {
		t.Fatalf("expected creation timestamp %v, got %v", instant, created.CreatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.Create(ctx, "", []string{"2+2"}, answers(4)); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("missing owner: expected unauthenticated, got %v", err)
	}
	if _, err := service.Create(ctx, "u1", nil, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty questions: expected validation error, got %v", err)
	}
	if _, err := service.Create(ctx, "u1", []string{"2+2", "3+3"}, answers(4)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("length mismatch: expected validation error, got %v", err)
	}
	if _, err := service.Create(ctx, "u1", []string{"nonsense"}, answers(0)); !errors.Is(err, domain.ErrScoring) {
		t.Fatalf("unevaluable question: expected scoring error, got %v", err)
	}
}

func TestUpdateRescoresAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := service.Update(ctx, "u1", created.ID, answers(9))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Score != 0 {
		t.Fatalf("expected score 0 after wrong answer, got %d", updated.Score)
	}

	// Same answers again: same score, no error.
	again, err := service.Update(ctx, "u1", created.ID, answers(9))
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if again.Score != updated.Score {
		t.Fatalf("expected idempotent score %d, got %d", updated.Score, again.Score)
	}
}

func TestUpdateAccessControl(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Update(ctx, "u2", created.ID, answers(4)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner update: expected forbidden, got %v", err)
	}
	if _, err := service.Update(ctx, "", created.ID, answers(4)); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous update: expected unauthenticated, got %v", err)
	}
	if _, err := service.Update(ctx, "u1", 999, answers(4)); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("missing quiz: expected not found, got %v", err)
	}
	if _, err := service.Update(ctx, "u1", created.ID, answers(4, 5)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("answer count mismatch: expected validation error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete(ctx, "u2", created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner delete: expected forbidden, got %v", err)
	}
	if err := service.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.Delete(ctx, "u1", created.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
	if _, err := service.Update(ctx, "u1", created.ID, answers(4)); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("update after delete: expected not found, got %v", err)
	}
}

func TestListForOwner(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.ListForOwner(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous list: expected unauthenticated, got %v", err)
	}

	if _, err := service.Create(ctx, "u1", []string{"2+2", "7*8"}, answers(4, 56)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Create(ctx, "u2", []string{"1+1"}, answers(2)); err != nil {
		t.Fatalf("create: %v", err)
	}

	quizzes, err := service.ListForOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected only u1's quiz, got %d", len(quizzes))
	}
	if len(quizzes[0].CorrectAnswers) != 2 || quizzes[0].CorrectAnswers[1] != 56 {
		t.Fatalf("unexpected answer key %v", quizzes[0].CorrectAnswers)
	}
}

func TestListSkipsCorruptedQuiz(t *testing.T) {
	ctx := context.Background()
	var buf strings.Builder
	repo := memory.NewQuizRepository()
	evaluator := app.NewEvaluator(nil)
	scorer := app.NewScorer(evaluator)
	answerSource := app.NewRepositoryAnswerSource(repo, scorer)
	service := app.NewQuizService(repo, answerSource, app.NewGenerator(evaluator), scorer, log.New(&buf, "", 0))

	if _, err := service.Create(ctx, "u1", []string{"2+2"}, answers(4)); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Seed a corrupted quiz directly through the repository, below the
	// orchestrator's validation.
	if _, err := repo.Insert(ctx, domain.Quiz{
		OwnerID:     "u1",
		Questions:   []string{"garbage"},
		UserAnswers: []*int64{nil},
		CreatedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("seed corrupted quiz: %v", err)
	}

	quizzes, err := service.ListForOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected corrupted quiz skipped, got %d quizzes", len(quizzes))
	}
	if !strings.Contains(buf.String(), "skipping quiz") {
		t.Fatalf("expected skip to be logged, log: %q", buf.String())
	}
}

func TestGenerateQuestionsBounds(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.GenerateQuestions(0); !errors.Is(err, domain.ErrInvalidCount) {
		t.Fatalf("expected invalid count, got %v", err)
	}
	questions, err := service.GenerateQuestions(3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
}

func newTestService() (*app.QuizService, *memory.QuizRepository) {
	repo := memory.NewQuizRepository()
	evaluator := app.NewEvaluator(nil)
	scorer := app.NewScorer(evaluator)
	generator := app.NewGeneratorWithSeed(evaluator, 7)
	answerSource := app.NewRepositoryAnswerSource(repo, scorer)
	return app.NewQuizService(repo, answerSource, generator, scorer, nil), repo
}
