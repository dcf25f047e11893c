package services

import (
	"context"
	"log/slog"

	"github.com/BIJODEV/BibleQZ/internal/cache"
	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/localstore"
	"github.com/BIJODEV/BibleQZ/internal/realtime"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

// ServiceManager bundles all service interfaces for the transport layer.
type ServiceManager interface {
	Quiz() QuizService
	Submission() SubmissionService
	Results() ResultsService
	ImportExport() ImportExportService

	Health(ctx context.Context) error
	Close() error
}

type serviceManager struct {
	repo      repositories.Repository
	publisher events.EventPublisher

	quiz         QuizService
	submission   SubmissionService
	results      ResultsService
	importExport ImportExportService
}

// ManagerDeps carries the infrastructure the service layer is built on.
// Feed and Local are optional; without them live subscriptions and the
// degraded-mode store are disabled.
type ManagerDeps struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Feed      *realtime.Feed
	Local     *localstore.Store
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
}

func NewServiceManager(deps ManagerDeps) ServiceManager {
	quiz := NewQuizService(deps.Repo, deps.Cache, deps.Publisher, deps.Logger, deps.Validator)
	results := NewResultsService(deps.Repo, deps.Feed, deps.Local, deps.Logger)

	return &serviceManager{
		repo:         deps.Repo,
		publisher:    deps.Publisher,
		quiz:         quiz,
		submission:   NewSubmissionService(deps.Repo, quiz, deps.Feed, deps.Publisher, deps.Logger, deps.Validator),
		results:      results,
		importExport: NewImportExportService(results, deps.Publisher, deps.Logger),
	}
}

func (m *serviceManager) Quiz() QuizService                 { return m.quiz }
func (m *serviceManager) Submission() SubmissionService     { return m.submission }
func (m *serviceManager) Results() ResultsService           { return m.results }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }

func (m *serviceManager) Health(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *serviceManager) Close() error {
	if err := m.publisher.Close(); err != nil {
		return err
	}
	return m.repo.Close()
}
