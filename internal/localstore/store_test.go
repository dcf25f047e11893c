package localstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func TestAppendAndListInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	names := []string{"first", "second", "third"}
	for i, name := range names {
		err := store.Append(ctx, "quiz_1", models.Result{
			UserName: name, Score: i, Total: 3, Timestamp: at.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	results, err := store.List(ctx, "quiz_1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, name := range names {
		assert.Equal(t, name, results[i].UserName)
	}
}

func TestListUnknownQuizIsEmpty(t *testing.T) {
	store := newTestStore(t)

	results, err := store.List(context.Background(), "quiz_missing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAppendDoesNotDeduplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := models.Result{UserName: "dup", Score: 5, Total: 10, Timestamp: time.Now().UTC()}
	require.NoError(t, store.Append(ctx, "quiz_1", result))
	require.NoError(t, store.Append(ctx, "quiz_1", result))

	results, err := store.List(ctx, "quiz_1")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClearScopedToQuiz(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "quiz_a", models.Result{UserName: "a", Score: 1, Total: 2}))
	require.NoError(t, store.Append(ctx, "quiz_b", models.Result{UserName: "b", Score: 2, Total: 2}))

	require.NoError(t, store.Clear(ctx, "quiz_a"))

	cleared, err := store.List(ctx, "quiz_a")
	require.NoError(t, err)
	assert.Empty(t, cleared)

	kept, err := store.List(ctx, "quiz_b")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestResultSurvivesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	taken := 72
	selected := 1
	result := models.Result{
		UserName:  "Asha",
		Score:     2,
		Total:     3,
		Timestamp: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		TimeTaken: &taken,
		Answers: []models.AnswerRecord{
			{Question: "Q1", SelectedAnswer: &selected, CorrectAnswer: 1, IsCorrect: true, ActiveOptions: []string{"x", "y"}},
		},
	}
	require.NoError(t, store.Append(ctx, "quiz_1", result))

	results, err := store.List(ctx, "quiz_1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.Answers, results[0].Answers)
	assert.Equal(t, *result.TimeTaken, *results[0].TimeTaken)
}
