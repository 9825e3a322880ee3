package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/middleware"
	"github.com/stemsi/exam-engine/internal/response"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/validator"
)

// SubmissionHandler exposes read-only views of the caller's submissions.
type SubmissionHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(sessionService *service.ExamSessionService, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "submission_handler").Logger(),
	}
}

// GetSubmission godoc
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, fields := validator.ParseID("id", c.Param("id"))
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	summary, err := h.sessionService.GetSummary(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// ListSubmissions godoc
// GET /api/v1/submissions?page=1&per_page=10
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	summaries, pagination, err := h.sessionService.ListMine(c.Request.Context(), middleware.GetUserID(c), page, perPage)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, summaries, pagination)
}
