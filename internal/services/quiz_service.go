package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BIJODEV/BibleQZ/internal/cache"
	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/linkcodec"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

const (
	quizCacheKeyPrefix = "bibleqz:quiz:"
	quizCacheTTL       = 10 * time.Minute
)

// QuizService owns the snapshot lifecycle: create, publish (share), read and
// the author's personal history.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error)
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	Publish(ctx context.Context, id string) (*ShareLink, error)
	ShareLink(ctx context.Context, id string) (*ShareLink, error)
	GetHistory(ctx context.Context, userID string) ([]models.Quiz, error)
}

// CreateQuizRequest carries an author's draft snapshot.
type CreateQuizRequest struct {
	Title       string            `json:"title" validate:"required,notblank,max=200"`
	Passage     string            `json:"passage" validate:"required,notblank,max=200"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	Questions   []models.Question `json:"questions" validate:"required,min=1,max=35,dive"`
}

// ShareLink is the published quiz's outward handle: the stable id plus the
// snapshot encoded as a fragment-safe token for the manual-share path.
type ShareLink struct {
	QuizID            string `json:"quizId"`
	Token             string `json:"token"`
	NearQuestionLimit bool   `json:"nearQuestionLimit,omitempty"`
}

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// NewQuizID mints an opaque unique token for a fresh snapshot.
func NewQuizID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("quiz_%d_%s", time.Now().UnixMilli(), suffix)
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:          NewQuizID(),
		Title:       strings.TrimSpace(req.Title),
		Passage:     strings.TrimSpace(req.Passage),
		Description: req.Description,
		Status:      models.QuizDraft,
		Questions:   req.Questions,
		CreatedBy:   creatorID,
	}

	// Normalize every question so the stored snapshot already satisfies the
	// active-slot invariants (correctAnswer clamped into the active range).
	for i := range quiz.Questions {
		quiz.Questions[i].SetNumberOfOptions(quiz.Questions[i].NumberOfOptions)
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, NewTransientError("quiz create", err)
	}

	if creatorID != "" {
		if err := s.repo.History().SaveQuiz(ctx, creatorID, quiz); err != nil {
			// History is a convenience list; its failure must not lose the quiz.
			s.logger.Warn("failed to record quiz in author history",
				"quiz_id", quiz.ID, "user_id", creatorID, "error", err)
		}
	}

	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var cached models.Quiz
	if err := s.cache.Get(ctx, quizCacheKeyPrefix+id, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("quiz cache read failed", "quiz_id", id, "error", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, NewTransientError("quiz read", err)
	}

	if err := s.cache.Set(ctx, quizCacheKeyPrefix+id, quiz, quizCacheTTL); err != nil {
		s.logger.Warn("quiz cache write failed", "quiz_id", id, "error", err)
	}
	return quiz, nil
}

// Publish validates the snapshot and issues its share link. After this point
// the question set and correct answers are frozen; an invalid snapshot is
// never partially published.
func (s *quizService) Publish(ctx context.Context, id string) (*ShareLink, error) {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizArchived {
		return nil, ErrQuizArchived
	}

	if verr := s.validator.Quiz().ValidateForShare(quiz); verr != nil {
		return nil, verr
	}

	if quiz.Status != models.QuizPublished {
		if err := s.repo.Quiz().UpdateStatus(ctx, id, models.QuizPublished); err != nil {
			return nil, NewTransientError("quiz publish", err)
		}
		quiz.Status = models.QuizPublished
		if err := s.cache.Delete(ctx, quizCacheKeyPrefix+id); err != nil {
			s.logger.Warn("quiz cache invalidation failed", "quiz_id", id, "error", err)
		}

		event := events.NewQuizEvent(events.EventQuizPublished, events.QuizPublishedEvent{
			QuizID:        quiz.ID,
			QuizTitle:     quiz.Title,
			Passage:       quiz.Passage,
			QuestionCount: len(quiz.Questions),
			CreatedBy:     quiz.CreatedBy,
		})
		if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish quiz.published event", "quiz_id", id, "error", err)
		}
	}

	return s.buildShareLink(quiz)
}

// ShareLink re-issues the link for an already-published quiz.
func (s *quizService) ShareLink(ctx context.Context, id string) (*ShareLink, error) {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.IsShared() {
		return nil, ErrQuizNotPublished
	}
	return s.buildShareLink(quiz)
}

func (s *quizService) buildShareLink(quiz *models.Quiz) (*ShareLink, error) {
	token, err := linkcodec.Encode(quiz)
	if err != nil {
		return nil, fmt.Errorf("encode share link: %w", err)
	}
	return &ShareLink{
		QuizID:            quiz.ID,
		Token:             token,
		NearQuestionLimit: s.validator.Quiz().NearQuestionLimit(quiz),
	}, nil
}

func (s *quizService) GetHistory(ctx context.Context, userID string) ([]models.Quiz, error) {
	quizzes, err := s.repo.History().GetQuizzes(ctx, userID)
	if err != nil {
		return nil, NewTransientError("history read", err)
	}
	return quizzes, nil
}
