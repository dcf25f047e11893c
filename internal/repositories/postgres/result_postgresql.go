package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Append records one result and bumps the quiz's participant counter in a
// single transaction, so the counter never drifts from the collection.
func (r *ResultPostgreSQL) Append(ctx context.Context, quizID string, result *models.Result) error {
	result.QuizID = quizID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("failed to append result: %w", err)
		}

		now := time.Now().UTC()
		update := tx.Model(&models.Quiz{}).
			Where("id = ?", quizID).
			Updates(map[string]interface{}{
				"total_participants": gorm.Expr("total_participants + 1"),
				"last_result_at":     &now,
			})
		if update.Error != nil {
			return fmt.Errorf("failed to increment participant counter: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListByQuiz returns the quiz's full result collection in insertion order.
func (r *ResultPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]models.Result, error) {
	var results []models.Result
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
