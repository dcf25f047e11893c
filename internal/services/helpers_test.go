package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BIJODEV/BibleQZ/internal/cache"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== IN-MEMORY REPOSITORY =====

type fakeRepo struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
	results map[string][]models.Result
	history map[string][]models.Quiz

	appendErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quizzes: make(map[string]*models.Quiz),
		results: make(map[string][]models.Result),
		history: make(map[string][]models.Quiz),
	}
}

func (f *fakeRepo) Quiz() repositories.QuizRepository       { return (*fakeQuizRepo)(f) }
func (f *fakeRepo) Result() repositories.ResultRepository   { return (*fakeResultRepo)(f) }
func (f *fakeRepo) History() repositories.HistoryRepository { return (*fakeHistoryRepo)(f) }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

type fakeQuizRepo fakeRepo

func (f *fakeQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.quizzes[quiz.ID]; !exists {
		clone := *quiz
		f.quizzes[quiz.ID] = &clone
	}
	return nil
}

func (f *fakeQuizRepo) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *quiz
	return &clone, nil
}

func (f *fakeQuizRepo) UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Status = status
	return nil
}

func (f *fakeQuizRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeResultRepo fakeRepo

func (f *fakeResultRepo) Append(ctx context.Context, quizID string, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.results[quizID] = append(f.results[quizID], *result)
	if quiz, ok := f.quizzes[quizID]; ok {
		quiz.TotalParticipants++
	}
	return nil
}

func (f *fakeResultRepo) ListByQuiz(ctx context.Context, quizID string) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Result, len(f.results[quizID]))
	copy(out, f.results[quizID])
	return out, nil
}

func (f *fakeResultRepo) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.results[quizID])), nil
}

type fakeHistoryRepo fakeRepo

func (f *fakeHistoryRepo) SaveQuiz(ctx context.Context, userID string, quiz *models.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := append([]models.Quiz{*quiz}, f.history[userID]...)
	if len(entry) > models.HistoryLimit {
		entry = entry[:models.HistoryLimit]
	}
	f.history[userID] = entry
	return nil
}

func (f *fakeHistoryRepo) GetQuizzes(ctx context.Context, userID string) ([]models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Quiz, len(f.history[userID]))
	copy(out, f.history[userID])
	return out, nil
}

// ===== IN-MEMORY CACHE =====

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

// ===== TEST DATA =====

func draftQuiz(id string) *models.Quiz {
	return &models.Quiz{
		ID:      id,
		Title:   "Gospel of John",
		Passage: "John 3",
		Status:  models.QuizDraft,
		Questions: []models.Question{
			{
				Question:        "Who visited Jesus at night?",
				Options:         []string{"Nicodemus", "Peter", "", ""},
				NumberOfOptions: 2,
				CorrectAnswer:   0,
			},
			{
				Question:        "What must one be to see the kingdom?",
				Options:         []string{"Rich", "Born again", "A teacher", ""},
				NumberOfOptions: 3,
				CorrectAnswer:   1,
			},
		},
	}
}

func intPtr(v int) *int { return &v }
