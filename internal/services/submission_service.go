package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/realtime"
	"github.com/BIJODEV/BibleQZ/internal/repositories"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

// sameNameWindow is how long a repeated submission under the same display
// name for the same quiz is treated as a duplicate at the storage boundary.
// It catches rapid double-submits that slip past the session guard (page
// reload, second tab) without blocking genuinely distinct participants who
// happen to share a name.
const sameNameWindow = 30 * time.Second

// SessionState is the submission lifecycle of one quiz-taking session.
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionSubmitting SessionState = "submitting"
	SessionCompleted  SessionState = "completed"
)

// SubmissionSession guards one participant's quiz run. A session submits at
// most once: the first Submit moves it idle -> submitting -> completed, and
// every later attempt is absorbed as a duplicate. A failed attempt returns the
// session to idle so the participant can retry.
type SubmissionSession struct {
	ID     string
	QuizID string

	mu     sync.Mutex
	state  SessionState
	result *models.Result
}

// State reports the session's current lifecycle phase.
func (s *SubmissionSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the recorded result once the session is completed.
func (s *SubmissionSession) Result() *models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// begin attempts the idle -> submitting transition. It reports the state the
// session was in; only SessionIdle means the caller owns the attempt.
func (s *SubmissionSession) begin() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	if prev == SessionIdle {
		s.state = SessionSubmitting
	}
	return prev
}

// complete records the outcome and releases or closes the session.
func (s *SubmissionSession) complete(result *models.Result, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.state = SessionCompleted
		s.result = result
	} else {
		s.state = SessionIdle
	}
}

// SubmitRequest is one participant's completed answer sheet. Answers holds the
// selected option index per question, nil for unanswered.
type SubmitRequest struct {
	UserName  string `json:"userName" validate:"required,notblank,max=100"`
	Answers   []*int `json:"answers" validate:"required"`
	TimeTaken *int   `json:"timeTaken,omitempty" validate:"omitempty,min=0"`
}

// SubmissionService accepts completed quiz runs: it grades the answer sheet
// against the published snapshot and records the result exactly once per
// session.
type SubmissionService interface {
	StartSession(quizID string) *SubmissionSession
	Session(id string) (*SubmissionSession, bool)
	EndSession(id string)
	Submit(ctx context.Context, sessionID string, req *SubmitRequest) (*models.Result, error)
}

type submissionService struct {
	repo      repositories.Repository
	quizzes   QuizService
	feed      *realtime.Feed
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	mu       sync.RWMutex
	sessions map[string]*SubmissionSession
}

func NewSubmissionService(
	repo repositories.Repository,
	quizzes QuizService,
	feed *realtime.Feed,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		quizzes:   quizzes,
		feed:      feed,
		publisher: publisher,
		logger:    logger,
		validator: v,
		sessions:  make(map[string]*SubmissionSession),
	}
}

// StartSession opens a fresh idle session for one run of the quiz.
func (s *submissionService) StartSession(quizID string) *SubmissionSession {
	session := &SubmissionSession{
		ID:     uuid.NewString(),
		QuizID: quizID,
		state:  SessionIdle,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *submissionService) Session(id string) (*SubmissionSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// EndSession drops a session when the participant's view goes away.
func (s *submissionService) EndSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Submit grades and records one answer sheet. Duplicate attempts, whether
// caught by the session guard or by the same-name window at the storage
// boundary, come back as ErrDuplicateSubmission / ErrSubmissionInFlight; the
// participant's run still counts as completed and callers surface success.
func (s *submissionService) Submit(ctx context.Context, sessionID string, req *SubmitRequest) (*models.Result, error) {
	session, ok := s.Session(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	switch session.begin() {
	case SessionSubmitting:
		return nil, ErrSubmissionInFlight
	case SessionCompleted:
		return session.Result(), ErrDuplicateSubmission
	}

	result, err := s.submitOnce(ctx, session.QuizID, req)
	session.complete(result, err == nil || IsDuplicate(err))
	return result, err
}

func (s *submissionService) submitOnce(ctx context.Context, quizID string, req *SubmitRequest) (*models.Result, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsShared() {
		return nil, ErrQuizNotPublished
	}

	result := grade(quiz, req)

	existing, err := s.repo.Result().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, NewTransientError("result dedup check", err)
	}
	if dup := findRecentByName(existing, result.UserName, result.Timestamp); dup != nil {
		s.logger.Info("absorbing duplicate submission",
			"quiz_id", quizID, "user_name", result.UserName)
		return dup, ErrDuplicateSubmission
	}

	if err := s.repo.Result().Append(ctx, quizID, result); err != nil {
		return nil, NewTransientError("result append", err)
	}

	s.broadcast(ctx, quizID, append(existing, *result))

	count, err := s.repo.Result().CountByQuiz(ctx, quizID)
	if err != nil {
		count = int64(len(existing) + 1)
	}
	event := events.NewQuizEvent(events.EventResultRecorded, events.ResultRecordedEvent{
		QuizID:            quizID,
		UserName:          result.UserName,
		Score:             result.Score,
		Total:             result.Total,
		SubmittedAt:       result.Timestamp,
		TotalParticipants: int(count),
	})
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish result.recorded event",
			"quiz_id", quizID, "error", err)
	}

	return result, nil
}

// broadcast pushes the quiz's full current result list to live viewers.
func (s *submissionService) broadcast(ctx context.Context, quizID string, results []models.Result) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, quizID, results); err != nil {
		s.logger.Warn("result feed update failed", "quiz_id", quizID, "error", err)
	}
}

// grade scores an answer sheet against the snapshot's active options. An
// answer index outside the question's active range counts as unanswered.
func grade(quiz *models.Quiz, req *SubmitRequest) *models.Result {
	result := &models.Result{
		QuizID:    quiz.ID,
		UserName:  strings.TrimSpace(req.UserName),
		Total:     len(quiz.Questions),
		Timestamp: time.Now().UTC(),
		TimeTaken: req.TimeTaken,
		Answers:   make([]models.AnswerRecord, 0, len(quiz.Questions)),
	}

	for i, q := range quiz.Questions {
		var selected *int
		if i < len(req.Answers) && req.Answers[i] != nil && *req.Answers[i] >= 0 && *req.Answers[i] < q.NumberOfOptions {
			v := *req.Answers[i]
			selected = &v
		}

		record := models.AnswerRecord{
			Question:       q.Question,
			SelectedAnswer: selected,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      selected != nil && *selected == q.CorrectAnswer,
			ActiveOptions:  append([]string(nil), q.ActiveOptions()...),
			Explanation:    q.Explanation,
		}
		if record.IsCorrect {
			result.Score++
		}
		result.Answers = append(result.Answers, record)
	}

	return result
}

// findRecentByName returns an already-recorded result that makes the new one a
// duplicate: same display name (case-sensitive, after trimming) submitted
// within the same-name window.
func findRecentByName(results []models.Result, userName string, at time.Time) *models.Result {
	for i := range results {
		r := &results[i]
		if strings.TrimSpace(r.UserName) != userName {
			continue
		}
		delta := at.Sub(r.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta <= sameNameWindow {
			return r
		}
	}
	return nil
}
