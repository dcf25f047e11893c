package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/models"
)

func newImportExportFixture(t *testing.T) (*fakeRepo, ResultsService, ImportExportService) {
	t.Helper()
	repo := newFakeRepo()
	results := NewResultsService(repo, nil, newLocalStore(t), testLogger())
	publisher := events.NewMockEventPublisher(testLogger())
	return repo, results, NewImportExportService(results, publisher, testLogger())
}

func TestImportExport_ResultTokenRoundTrip(t *testing.T) {
	_, results, svc := newImportExportFixture(t)
	ctx := context.Background()

	original := models.Result{
		UserName:  "Ruth",
		Score:     4,
		Total:     5,
		Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	token, err := svc.EncodeResult("quiz_1", original)
	require.NoError(t, err)

	envelope, err := svc.ImportResult(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "quiz_1", envelope.QuizID)
	assert.Equal(t, "Ruth", envelope.Result.UserName)

	local, err := results.LocalList(ctx, "quiz_1")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, 4, local[0].Score)
}

func TestImportExport_RejectsForeignTokens(t *testing.T) {
	_, _, svc := newImportExportFixture(t)

	for name, token := range map[string]string{
		"empty":          "",
		"not base64url":  "not a token!!",
		"not json":       "aGVsbG8gd29ybGQ",
		"missing fields": "e30",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ImportResult(context.Background(), token)
			require.Error(t, err)
			assert.True(t, IsInvalidLink(err))
		})
	}
}

func seedResults(t *testing.T, repo *fakeRepo) {
	t.Helper()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []models.Result{
		{UserName: "Ruth", Score: 5, Total: 5, Timestamp: base, TimeTaken: intPtr(60)},
		{UserName: "Boaz", Score: 3, Total: 5, Timestamp: base.Add(time.Minute)},
	} {
		r.QuizID = "quiz_1"
		require.NoError(t, repo.Result().Append(context.Background(), "quiz_1", &r))
	}
}

func TestImportExport_ExportCSV(t *testing.T) {
	repo, _, svc := newImportExportFixture(t)
	seedResults(t, repo)

	export, err := svc.ExportDashboard(context.Background(), "quiz_1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", export.ContentType)
	assert.Equal(t, "quiz_1_results.csv", export.FileName)

	records, err := csv.NewReader(bytes.NewReader(export.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Rank", "Name", "Score", "Total", "Percentage", "Date", "TimeTaken"}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Ruth", records[1][1])
	assert.Equal(t, "100.0", records[1][4])
	assert.Equal(t, "60", records[1][6])
	assert.Equal(t, "", records[2][6], "missing time taken exports empty")
}

func TestImportExport_ExportJSON(t *testing.T) {
	repo, _, svc := newImportExportFixture(t)
	seedResults(t, repo)

	export, err := svc.ExportDashboard(context.Background(), "quiz_1", FormatJSON)
	require.NoError(t, err)

	var dashboard models.Dashboard
	require.NoError(t, json.Unmarshal(export.Body, &dashboard))
	assert.Equal(t, "quiz_1", dashboard.QuizID)
	require.Len(t, dashboard.Leaderboard, 2)
	assert.Equal(t, 2, dashboard.Summary.TotalParticipants)
}

func TestImportExport_ExportXLSX(t *testing.T) {
	repo, _, svc := newImportExportFixture(t)
	seedResults(t, repo)

	export, err := svc.ExportDashboard(context.Background(), "quiz_1", FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(export.Body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "Ruth", rows[1][1])
}

func TestImportExport_UnsupportedFormat(t *testing.T) {
	_, _, svc := newImportExportFixture(t)

	_, err := svc.ExportDashboard(context.Background(), "quiz_1", ExportFormat("pdf"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
