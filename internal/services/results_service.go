package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BIJODEV/BibleQZ/internal/localstore"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/ranking"
	"github.com/BIJODEV/BibleQZ/internal/realtime"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

// ResultsService serves a quiz's result collection: the ranked dashboard for
// one-shot reads, a live subscription for open result views, and the local
// fallback store for degraded mode.
type ResultsService interface {
	Dashboard(ctx context.Context, quizID string) (*models.Dashboard, error)
	List(ctx context.Context, quizID string) ([]models.Result, error)
	Subscribe(quizID string, handler func(*models.Dashboard)) (cancel func(), err error)

	LocalList(ctx context.Context, quizID string) ([]models.Result, error)
	LocalDashboard(ctx context.Context, quizID string) (*models.Dashboard, error)
	LocalAppend(ctx context.Context, quizID string, result models.Result) error
	LocalClear(ctx context.Context, quizID string) error
}

type resultsService struct {
	repo   repositories.Repository
	feed   *realtime.Feed
	local  *localstore.Store
	logger *slog.Logger
}

func NewResultsService(
	repo repositories.Repository,
	feed *realtime.Feed,
	local *localstore.Store,
	logger *slog.Logger,
) ResultsService {
	return &resultsService{
		repo:   repo,
		feed:   feed,
		local:  local,
		logger: logger,
	}
}

// Dashboard reads the quiz's current results once and runs the full
// aggregation pass over them.
func (s *resultsService) Dashboard(ctx context.Context, quizID string) (*models.Dashboard, error) {
	results, err := s.List(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ranking.BuildDashboard(quizID, results), nil
}

func (s *resultsService) List(ctx context.Context, quizID string) ([]models.Result, error) {
	results, err := s.repo.Result().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, NewTransientError("result list", err)
	}
	return results, nil
}

// Subscribe attaches handler to the quiz's live feed. Every delivery carries a
// freshly aggregated dashboard built from the full result list in that update;
// the handler should replace its previous view wholesale. The returned cancel
// must run when the viewer goes away.
func (s *resultsService) Subscribe(quizID string, handler func(*models.Dashboard)) (func(), error) {
	if s.feed == nil {
		return nil, errNoLiveFeed
	}
	cancel, err := s.feed.Subscribe(quizID, func(results []models.Result) {
		handler(ranking.BuildDashboard(quizID, results))
	})
	if err != nil {
		return nil, NewTransientError("result subscribe", err)
	}
	return cancel, nil
}

// errNoLocalStore and errNoLiveFeed stand in when the process was started
// without the optional local fallback database or Redis feed.
var (
	errNoLocalStore = errors.New("local result store is not configured")
	errNoLiveFeed   = errors.New("live result feed is not configured")
)

func (s *resultsService) LocalList(ctx context.Context, quizID string) ([]models.Result, error) {
	if s.local == nil {
		return nil, errNoLocalStore
	}
	return s.local.List(ctx, quizID)
}

func (s *resultsService) LocalDashboard(ctx context.Context, quizID string) (*models.Dashboard, error) {
	results, err := s.LocalList(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ranking.BuildDashboard(quizID, results), nil
}

func (s *resultsService) LocalAppend(ctx context.Context, quizID string, result models.Result) error {
	if s.local == nil {
		return errNoLocalStore
	}
	return s.local.Append(ctx, quizID, result)
}

func (s *resultsService) LocalClear(ctx context.Context, quizID string) error {
	if s.local == nil {
		return errNoLocalStore
	}
	s.logger.Info("clearing local results", "quiz_id", quizID)
	return s.local.Clear(ctx, quizID)
}
