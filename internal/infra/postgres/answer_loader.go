package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// AnswerLoader reads a quiz's stored questions and evaluates them into an
// answer key. It is the read path behind the Redis answer cache.
type AnswerLoader struct {
	pool   *pgxpool.Pool
	scorer *app.Scorer
}

var _ app.AnswerSource = (*AnswerLoader)(nil)

func NewAnswerLoader(pool *pgxpool.Pool, scorer *app.Scorer) *AnswerLoader {
	return &AnswerLoader{pool: pool, scorer: scorer}
}

func (l *AnswerLoader) CorrectAnswers(ctx context.Context, quizID int64) ([]int64, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT questions FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	var questions []string
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return l.scorer.AnswerKey(questions)
}
