package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

func newSubmissionFixture(t *testing.T) (*fakeRepo, SubmissionService, *events.MockEventPublisher) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(testLogger())
	quizzes := NewQuizService(repo, newMemCache(), publisher, testLogger(), validator.New())
	submissions := NewSubmissionService(repo, quizzes, nil, publisher, testLogger(), validator.New())

	quiz := draftQuiz("quiz_1")
	quiz.Status = models.QuizPublished
	require.NoError(t, repo.Quiz().Create(context.Background(), quiz))

	return repo, submissions, publisher
}

func TestSubmissionSession_StateMachine(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t)

	session := svc.StartSession("quiz_1")
	assert.Equal(t, SessionIdle, session.State())

	req := &SubmitRequest{
		UserName: "Ruth",
		Answers:  []*int{intPtr(0), intPtr(1)},
	}
	result, err := svc.Submit(context.Background(), session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, session.State())
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 2, result.Total)
}

func TestSubmissionService_Grading(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t)
	session := svc.StartSession("quiz_1")

	// First answer wrong, second unanswered, out-of-range ignored.
	req := &SubmitRequest{
		UserName:  "Boaz",
		Answers:   []*int{intPtr(1), nil},
		TimeTaken: intPtr(42),
	}
	result, err := svc.Submit(context.Background(), session.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	require.Len(t, result.Answers, 2)
	assert.False(t, result.Answers[0].IsCorrect)
	assert.Nil(t, result.Answers[1].SelectedAnswer)
	assert.Equal(t, []string{"Nicodemus", "Peter"}, result.Answers[0].ActiveOptions,
		"answer records carry only the active options")
	assert.Equal(t, 42, *result.TimeTaken)
}

func TestSubmissionService_SecondSubmitAbsorbed(t *testing.T) {
	repo, svc, _ := newSubmissionFixture(t)
	session := svc.StartSession("quiz_1")

	req := &SubmitRequest{UserName: "Ruth", Answers: []*int{intPtr(0), intPtr(1)}}
	first, err := svc.Submit(context.Background(), session.ID, req)
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), session.ID, req)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.Equal(t, first, second, "duplicate surfaces the recorded result")

	stored, err := repo.Result().ListByQuiz(context.Background(), "quiz_1")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "nothing is recorded twice")
}

func TestSubmissionService_SameNameWindow(t *testing.T) {
	repo, svc, _ := newSubmissionFixture(t)

	// Another device already recorded Ruth moments ago.
	require.NoError(t, repo.Result().Append(context.Background(), "quiz_1", &models.Result{
		QuizID:    "quiz_1",
		UserName:  "Ruth",
		Score:     1,
		Total:     2,
		Timestamp: time.Now().UTC().Add(-5 * time.Second),
	}))

	session := svc.StartSession("quiz_1")
	result, err := svc.Submit(context.Background(), session.ID, &SubmitRequest{
		UserName: "  Ruth ",
		Answers:  []*int{intPtr(0), intPtr(1)},
	})
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.Equal(t, 1, result.Score, "the earlier recorded result is surfaced")
	assert.Equal(t, SessionCompleted, session.State())

	stored, err := repo.Result().ListByQuiz(context.Background(), "quiz_1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSubmissionService_SameNameOutsideWindow(t *testing.T) {
	repo, svc, _ := newSubmissionFixture(t)

	require.NoError(t, repo.Result().Append(context.Background(), "quiz_1", &models.Result{
		QuizID:    "quiz_1",
		UserName:  "Ruth",
		Score:     1,
		Total:     2,
		Timestamp: time.Now().UTC().Add(-2 * time.Minute),
	}))

	session := svc.StartSession("quiz_1")
	_, err := svc.Submit(context.Background(), session.ID, &SubmitRequest{
		UserName: "Ruth",
		Answers:  []*int{intPtr(0), intPtr(1)},
	})
	require.NoError(t, err, "an old same-name result is a distinct participant")

	stored, err := repo.Result().ListByQuiz(context.Background(), "quiz_1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSubmissionService_FailedAttemptAllowsRetry(t *testing.T) {
	repo, svc, _ := newSubmissionFixture(t)
	repo.appendErr = errors.New("connection refused")

	session := svc.StartSession("quiz_1")
	req := &SubmitRequest{UserName: "Ruth", Answers: []*int{intPtr(0), intPtr(1)}}

	_, err := svc.Submit(context.Background(), session.ID, req)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, SessionIdle, session.State(), "failure returns the session to idle")

	repo.appendErr = nil
	_, err = svc.Submit(context.Background(), session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, session.State())
}

func TestSubmissionService_UnpublishedQuiz(t *testing.T) {
	repo, svc, _ := newSubmissionFixture(t)
	require.NoError(t, repo.Quiz().Create(context.Background(), draftQuiz("quiz_draft")))

	session := svc.StartSession("quiz_draft")
	_, err := svc.Submit(context.Background(), session.ID, &SubmitRequest{
		UserName: "Ruth",
		Answers:  []*int{intPtr(0), intPtr(1)},
	})
	assert.ErrorIs(t, err, ErrQuizNotPublished)
}

func TestSubmissionService_UnknownSession(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t)

	_, err := svc.Submit(context.Background(), "nope", &SubmitRequest{
		UserName: "Ruth",
		Answers:  []*int{intPtr(0)},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionService_RecordedEvent(t *testing.T) {
	_, svc, publisher := newSubmissionFixture(t)
	session := svc.StartSession("quiz_1")

	_, err := svc.Submit(context.Background(), session.ID, &SubmitRequest{
		UserName: "Ruth",
		Answers:  []*int{intPtr(0), intPtr(1)},
	})
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultRecorded, published[0].Type)
	payload, ok := published[0].Data.(events.ResultRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "Ruth", payload.UserName)
	assert.Equal(t, 1, payload.TotalParticipants)
}

func TestSubmissionService_EndSession(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t)

	session := svc.StartSession("quiz_1")
	_, ok := svc.Session(session.ID)
	require.True(t, ok)

	svc.EndSession(session.ID)
	_, ok = svc.Session(session.ID)
	assert.False(t, ok)
}
