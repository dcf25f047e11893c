package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BIJODEV/BibleQZ/internal/events"
	"github.com/BIJODEV/BibleQZ/internal/linkcodec"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/ranking"
)

// ExportFormat selects the wire shape of an exported leaderboard.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

// exportHeader is the column order shared by every tabular export format.
var exportHeader = []string{"Rank", "Name", "Score", "Total", "Percentage", "Date", "TimeTaken"}

// Export is a rendered leaderboard ready to hand to the transport layer.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ImportExportService moves results in and out of the system: result share
// tokens inbound, rendered leaderboard files outbound.
type ImportExportService interface {
	EncodeResult(quizID string, result models.Result) (string, error)
	ImportResult(ctx context.Context, token string) (*models.ResultEnvelope, error)
	ExportDashboard(ctx context.Context, quizID string, format ExportFormat) (*Export, error)
}

type importExportService struct {
	results   ResultsService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewImportExportService(
	results ResultsService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ImportExportService {
	return &importExportService{
		results:   results,
		publisher: publisher,
		logger:    logger,
	}
}

// EncodeResult wraps one result in an envelope token for out-of-band carry.
func (s *importExportService) EncodeResult(quizID string, result models.Result) (string, error) {
	envelope := models.ResultEnvelope{
		QuizID:      quizID,
		Result:      result,
		SubmittedAt: time.Now().UTC(),
	}
	token, err := linkcodec.Encode(envelope)
	if err != nil {
		return "", fmt.Errorf("encode result token: %w", err)
	}
	return token, nil
}

// ImportResult decodes a result share token and lands the carried result in
// the local store. A token missing its quiz id or result body is rejected as
// an invalid link; a well-formed duplicate import is accepted as-is, since the
// local store never deduplicates.
func (s *importExportService) ImportResult(ctx context.Context, token string) (*models.ResultEnvelope, error) {
	var envelope models.ResultEnvelope
	if err := linkcodec.DecodeInto(token, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if envelope.QuizID == "" || envelope.Result.UserName == "" {
		return nil, ErrInvalidLink
	}

	envelope.Result.QuizID = envelope.QuizID
	if envelope.Result.Timestamp.IsZero() {
		envelope.Result.Timestamp = envelope.SubmittedAt
	}

	if err := s.results.LocalAppend(ctx, envelope.QuizID, envelope.Result); err != nil {
		return nil, NewTransientError("result import", err)
	}

	event := events.NewQuizEvent(events.EventResultsImported, events.ResultsImportedEvent{
		QuizID:     envelope.QuizID,
		UserName:   envelope.Result.UserName,
		ImportedAt: time.Now().UTC(),
	})
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish results.imported event",
			"quiz_id", envelope.QuizID, "error", err)
	}

	return &envelope, nil
}

// ExportDashboard renders the quiz's current ranked results in the requested
// format. Every format carries the same rows in the same leaderboard order.
func (s *importExportService) ExportDashboard(ctx context.Context, quizID string, format ExportFormat) (*Export, error) {
	results, err := s.results.List(ctx, quizID)
	if err != nil {
		return nil, err
	}
	entries := ranking.Rank(results)

	switch format {
	case FormatCSV:
		body, err := renderCSV(entries)
		if err != nil {
			return nil, err
		}
		return &Export{
			FileName:    quizID + "_results.csv",
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case FormatJSON:
		dashboard := ranking.BuildDashboard(quizID, results)
		body, err := json.MarshalIndent(dashboard, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render json export: %w", err)
		}
		return &Export{
			FileName:    quizID + "_results.json",
			ContentType: "application/json",
			Body:        body,
		}, nil
	case FormatXLSX:
		body, err := renderXLSX(entries)
		if err != nil {
			return nil, err
		}
		return &Export{
			FileName:    quizID + "_results.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		return nil, NewValidationError("format", "unsupported export format", string(format))
	}
}

func exportRow(e *models.LeaderboardEntry) []string {
	timeTaken := ""
	if e.TimeTaken != nil {
		timeTaken = strconv.Itoa(*e.TimeTaken)
	}
	return []string{
		strconv.Itoa(e.Rank),
		e.UserName,
		strconv.Itoa(e.Score),
		strconv.Itoa(e.Total),
		fmt.Sprintf("%.1f", e.Percentage),
		e.Timestamp.UTC().Format(time.RFC3339),
		timeTaken,
	}
}

func renderCSV(entries []models.LeaderboardEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("render csv export: %w", err)
	}
	for i := range entries {
		if err := w.Write(exportRow(&entries[i])); err != nil {
			return nil, fmt.Errorf("render csv export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv export: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(entries []models.LeaderboardEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("render xlsx export: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("render xlsx export: %w", err)
	}

	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("render xlsx export: %w", err)
		}
	}
	for row := range entries {
		for col, value := range exportRow(&entries[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("render xlsx export: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx export: %w", err)
	}
	return buf.Bytes(), nil
}
