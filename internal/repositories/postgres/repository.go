package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

// Repository is the gorm-backed aggregate over all postgres repositories.
type Repository struct {
	db      *gorm.DB
	quiz    repositories.QuizRepository
	result  repositories.ResultRepository
	history repositories.HistoryRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		quiz:    NewQuizPostgreSQL(db),
		result:  NewResultPostgreSQL(db),
		history: NewHistoryPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository       { return r.quiz }
func (r *Repository) Result() repositories.ResultRepository   { return r.result }
func (r *Repository) History() repositories.HistoryRepository { return r.history }

// WithTransaction runs fn against a Repository bound to a single transaction.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
