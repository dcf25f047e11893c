package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BIJODEV/BibleQZ/internal/linkcodec"
	"github.com/BIJODEV/BibleQZ/internal/middleware"
	"github.com/BIJODEV/BibleQZ/internal/models"
	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
	"github.com/BIJODEV/BibleQZ/internal/validator"
)

// QuizHandler serves the quiz snapshot lifecycle: create, read, publish and
// share-link issuance, plus the author's history.
type QuizHandler struct {
	BaseHandler
	service   services.QuizService
	validator *validator.Validator
}

func NewQuizHandler(service services.QuizService, v *validator.Validator, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   v,
	}
}

// CreateQuiz handles POST /api/v1/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	quiz, err := h.service.Create(c.Request.Context(), &req, middleware.CurrentUserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.LogInfo(c, "quiz created", "quiz_id", quiz.ID)
	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz handles GET /api/v1/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// PublishQuiz handles POST /api/v1/quizzes/:id/publish
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	link, err := h.service.Publish(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.LogInfo(c, "quiz published", "quiz_id", id)
	c.JSON(http.StatusOK, link)
}

// GetShareLink handles GET /api/v1/quizzes/:id/share-link
func (h *QuizHandler) GetShareLink(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	link, err := h.service.ShareLink(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// importQuizRequest carries a quiz share token for server-side decoding.
type importQuizRequest struct {
	Token string `json:"token" binding:"required"`
}

// ImportQuiz handles POST /api/v1/quizzes/import: decodes a share token back
// into the quiz snapshot it carries. Foreign or corrupted tokens are rejected
// as invalid links, never partially decoded.
func (h *QuizHandler) ImportQuiz(c *gin.Context) {
	var req importQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var quiz models.Quiz
	if err := linkcodec.DecodeInto(req.Token, &quiz); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid link", err)
		return
	}
	if quiz.Title == "" || len(quiz.Questions) == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "invalid link", nil,
			"token does not carry a quiz snapshot")
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetHistory handles GET /api/v1/quizzes/history (authenticated)
func (h *QuizHandler) GetHistory(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		h.RespondWithError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	quizzes, err := h.service.GetHistory(c.Request.Context(), userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}
