package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
)

// ResultHandler serves result submission, the aggregated dashboard, exports
// and the degraded-mode local store.
type ResultHandler struct {
	BaseHandler
	submissions  services.SubmissionService
	results      services.ResultsService
	importExport services.ImportExportService
}

func NewResultHandler(
	submissions services.SubmissionService,
	results services.ResultsService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *ResultHandler {
	return &ResultHandler{
		BaseHandler:  NewBaseHandler(logger),
		submissions:  submissions,
		results:      results,
		importExport: importExport,
	}
}

// StartSession handles POST /api/v1/quizzes/:id/sessions. Each quiz run gets
// its own session; the session id must accompany the eventual submission.
func (h *ResultHandler) StartSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session := h.submissions.StartSession(id)
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"quizId":    session.QuizID,
		"state":     session.State(),
	})
}

type submitResultRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	services.SubmitRequest
}

// SubmitResult handles POST /api/v1/quizzes/:id/results. Duplicate attempts
// are absorbed: the participant sees the same success response as the first
// submission, and nothing is recorded twice.
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req submitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), req.SessionID, &req.SubmitRequest)
	if err != nil && !services.IsDuplicate(err) {
		h.RespondWithServiceError(c, err)
		return
	}
	if services.IsDuplicate(err) {
		h.LogInfo(c, "duplicate submission absorbed", "quiz_id", id)
	}

	h.RespondWithSuccess(c, http.StatusOK, "result recorded", result)
}

// GetDashboard handles GET /api/v1/quizzes/:id/dashboard: the ranked
// leaderboard plus summary statistics, recomputed from the full collection.
func (h *ResultHandler) GetDashboard(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	dashboard, err := h.results.Dashboard(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListResults handles GET /api/v1/quizzes/:id/results: the raw collection in
// recorded order.
func (h *ResultHandler) ListResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	results, err := h.results.List(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizId": id, "results": results})
}

// ExportResults handles GET /api/v1/quizzes/:id/results/export?format=csv
func (h *ResultHandler) ExportResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	format := services.ExportFormat(c.DefaultQuery("format", string(services.FormatCSV)))
	export, err := h.importExport.ExportDashboard(c.Request.Context(), id, format)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Body)
}

type importResultRequest struct {
	Token string `json:"token" binding:"required"`
}

// ImportResult handles POST /api/v1/results/import: accepts a result share
// token carried out-of-band and lands it in the local store.
func (h *ResultHandler) ImportResult(c *gin.Context) {
	var req importResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	envelope, err := h.importExport.ImportResult(c.Request.Context(), req.Token)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.LogInfo(c, "result imported", "quiz_id", envelope.QuizID)
	h.RespondWithSuccess(c, http.StatusOK, "result imported", envelope)
}

// GetLocalResults handles GET /api/v1/quizzes/:id/results/local
func (h *ResultHandler) GetLocalResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	dashboard, err := h.results.LocalDashboard(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ClearLocalResults handles DELETE /api/v1/quizzes/:id/results/local. The
// removal is irreversible and scoped to this quiz's local list.
func (h *ResultHandler) ClearLocalResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.results.LocalClear(c.Request.Context(), id); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "local results cleared", nil)
}
