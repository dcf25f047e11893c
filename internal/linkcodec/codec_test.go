package linkcodec

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"string", "hello world"},
		{"number", 42.5},
		{"bool", true},
		{"null", nil},
		{"array", []any{"a", 1.0, false}},
		{"object", map[string]any{"quizId": "quiz_123", "score": 7.0}},
		{"nested", map[string]any{"outer": map[string]any{"inner": []any{1.0, 2.0}}}},
		{"unicode", "रोमियों 8:28 — और हम जानते हैं"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encode(tt.payload)
			require.NoError(t, err)

			raw, err := Decode(token)
			require.NoError(t, err)

			var got any
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestTokenIsFragmentSafe(t *testing.T) {
	// Bytes chosen to force '+' and '/' out of a standard base64 encoder.
	payload := map[string]any{"text": strings.Repeat("ÿþý", 20)}
	token, err := Encode(payload)
	require.NoError(t, err)

	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "#")
}

func TestDecodeRejectsForeignInput(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%% not a token %%%"},
		{"base64 but not json", "bm90IGpzb24"}, // "not json"
		{"truncated json", "eyJhIjo"},          // `{"a":`
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(tt.token)
			require.Error(t, err)
			assert.Nil(t, raw)

			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestQuizSnapshotRoundTrip(t *testing.T) {
	quiz := models.Quiz{
		ID:      "quiz_1712000000_abc123xyz",
		Title:   "Romans 8",
		Passage: "Romans 8:28-39",
		Questions: []models.Question{
			{
				Question:        "Who shall separate us from the love of Christ?",
				Options:         []string{"No one", "Tribulation", "Distress", "Persecution"},
				NumberOfOptions: 4,
				CorrectAnswer:   0,
				Explanation:     "Romans 8:35-39",
			},
		},
		CreatedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
	}

	token, err := Encode(quiz)
	require.NoError(t, err)

	var got models.Quiz
	require.NoError(t, DecodeInto(token, &got))
	assert.Equal(t, quiz.ID, got.ID)
	assert.Equal(t, quiz.Title, got.Title)
	assert.Equal(t, quiz.Questions, got.Questions)
}

func TestResultEnvelopeRoundTrip(t *testing.T) {
	taken := 95
	selected := 2
	env := models.ResultEnvelope{
		QuizID: "quiz_42",
		Result: models.Result{
			UserName:  "Priya",
			Score:     9,
			Total:     10,
			Timestamp: time.Date(2024, 4, 1, 12, 30, 0, 0, time.UTC),
			TimeTaken: &taken,
			Answers: []models.AnswerRecord{
				{
					Question:       "Q1",
					SelectedAnswer: &selected,
					CorrectAnswer:  2,
					IsCorrect:      true,
					ActiveOptions:  []string{"a", "b", "c"},
				},
			},
		},
		SubmittedAt: time.Date(2024, 4, 1, 12, 30, 1, 0, time.UTC),
	}

	token, err := Encode(env)
	require.NoError(t, err)

	var got models.ResultEnvelope
	require.NoError(t, DecodeInto(token, &got))
	assert.Equal(t, env.QuizID, got.QuizID)
	assert.Equal(t, env.Result.UserName, got.Result.UserName)
	assert.Equal(t, env.Result.Answers, got.Result.Answers)
	assert.True(t, env.SubmittedAt.Equal(got.SubmittedAt))
}

func TestDecodeIntoShapeMismatch(t *testing.T) {
	token, err := Encode([]int{1, 2, 3})
	require.NoError(t, err)

	var env models.ResultEnvelope
	err = DecodeInto(token, &env)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
