package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

type HistoryPostgreSQL struct {
	db *gorm.DB
}

func NewHistoryPostgreSQL(db *gorm.DB) repositories.HistoryRepository {
	return &HistoryPostgreSQL{db: db}
}

// SaveQuiz prepends the quiz to the author's history and trims it to the most
// recent models.HistoryLimit entries.
func (h *HistoryPostgreSQL) SaveQuiz(ctx context.Context, userID string, quiz *models.Quiz) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var history models.QuizHistory
		err := tx.Where("user_id = ?", userID).First(&history).Error

		var quizzes []models.Quiz
		now := time.Now().UTC()

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			history = models.QuizHistory{UserID: userID, CreatedAt: now}
		case err != nil:
			return fmt.Errorf("failed to load quiz history: %w", err)
		default:
			if len(history.Quizzes) > 0 {
				if err := json.Unmarshal(history.Quizzes, &quizzes); err != nil {
					return fmt.Errorf("failed to decode quiz history: %w", err)
				}
			}
		}

		quizzes = append([]models.Quiz{*quiz}, quizzes...)
		if len(quizzes) > models.HistoryLimit {
			quizzes = quizzes[:models.HistoryLimit]
		}

		raw, err := json.Marshal(quizzes)
		if err != nil {
			return fmt.Errorf("failed to encode quiz history: %w", err)
		}
		history.Quizzes = raw
		history.LastUpdated = now

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&history).Error
	})
}

// GetQuizzes returns the author's history, newest first, empty when none.
func (h *HistoryPostgreSQL) GetQuizzes(ctx context.Context, userID string) ([]models.Quiz, error) {
	var history models.QuizHistory
	err := h.db.WithContext(ctx).Where("user_id = ?", userID).First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Quiz{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz history: %w", err)
	}

	quizzes := []models.Quiz{}
	if len(history.Quizzes) > 0 {
		if err := json.Unmarshal(history.Quizzes, &quizzes); err != nil {
			return nil, fmt.Errorf("failed to decode quiz history: %w", err)
		}
	}
	return quizzes, nil
}
