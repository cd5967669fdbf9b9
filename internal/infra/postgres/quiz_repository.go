package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// quizRecord is the bun model for the quizzes table. Question and answer
// sequences are stored as JSONB so the table stays schema-stable.
type quizRecord struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          int64           `bun:"id,pk,autoincrement"`
	OwnerID     string          `bun:"owner_id"`
	Questions   json.RawMessage `bun:"questions,type:jsonb"`
	UserAnswers json.RawMessage `bun:"user_answers,type:jsonb"`
	Score       int             `bun:"score"`
	CreatedAt   time.Time       `bun:"created_at"`
}

// QuizRepository persists quizzes in Postgres through bun.
type QuizRepository struct {
	db *bun.DB
}

var _ app.QuizRepository = (*QuizRepository)(nil)

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	var rec quizRecord
	err := r.db.NewSelect().Model(&rec).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return toDomain(rec)
}

func (r *QuizRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	var recs []quizRecord
	err := r.db.NewSelect().Model(&recs).Where("owner_id = ?", ownerID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(recs))
	for _, rec := range recs {
		quiz, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (r *QuizRepository) Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	rec, err := toRecord(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	quiz.ID = rec.ID
	return quiz, nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz domain.Quiz) error {
	rec, err := toRecord(quiz)
	if err != nil {
		return err
	}
	res, err := r.db.NewUpdate().
		Model(&rec).
		Column("user_answers", "score").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quiz rows: %w", err)
	}
	if rows == 0 {
		// The record was deleted between lookup and update.
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*quizRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quiz rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func toRecord(quiz domain.Quiz) (quizRecord, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return quizRecord{}, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(quiz.UserAnswers)
	if err != nil {
		return quizRecord{}, fmt.Errorf("marshal answers: %w", err)
	}
	return quizRecord{
		ID:          quiz.ID,
		OwnerID:     quiz.OwnerID,
		Questions:   questions,
		UserAnswers: answers,
		Score:       quiz.Score,
		CreatedAt:   quiz.CreatedAt,
	}, nil
}

func toDomain(rec quizRecord) (domain.Quiz, error) {
	var questions []string
	if err := json.Unmarshal(rec.Questions, &questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	var answers []*int64
	if err := json.Unmarshal(rec.UserAnswers, &answers); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return domain.Quiz{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Questions:   questions,
		UserAnswers: answers,
		Score:       rec.Score,
		CreatedAt:   rec.CreatedAt,
	}, nil
}
