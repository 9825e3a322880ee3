package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/middleware"
	"github.com/stemsi/exam-engine/internal/model"
	"github.com/stemsi/exam-engine/internal/response"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/validator"
)

// ExamHandler handles the exam overview and starting and submitting exams.
type ExamHandler struct {
	sessionService *service.ExamSessionService
	catalog        service.ExamCatalog
	log            zerolog.Logger
}

// NewExamHandler creates a new ExamHandler. catalog serves the overview only
// and may be cached.
func NewExamHandler(sessionService *service.ExamSessionService, catalog service.ExamCatalog, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		sessionService: sessionService,
		catalog:        catalog,
		log:            log.With().Str("component", "exam_handler").Logger(),
	}
}

// GetExam godoc
// GET /api/v1/exams/:id
// Returns title, duration and question count of an active exam.
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, fields := validator.ParseID("id", c.Param("id"))
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidID, fields)
		return
	}

	exam, err := service.LookupActiveExam(c.Request.Context(), h.catalog, id)
	if errors.Is(err, service.ErrInvalidExam) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, exam.View())
}

// StartExam godoc
// POST /api/v1/exams/start
// Samples the question set and opens a timed submission.
func (h *ExamHandler) StartExam(c *gin.Context) {
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	examID, fields := validator.ParseID("exam_id", req.ExamID)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Start(c.Request.Context(), examID, middleware.GetUserID(c))
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// SubmitExam godoc
// POST /api/v1/exams/submit
// Scores the answers and finalizes the submission. Late submits are graded
// and flagged as expired.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	submissionID, fields := validator.ParseID("submission_id", req.SubmissionID)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answers := make([]model.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		questionID, fields := validator.ParseID("question_id", a.QuestionID)
		if fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		answers = append(answers, model.Answer{
			QuestionID:    questionID,
			SelectedIndex: model.NormalizeSelectedIndex(a.SelectedIndex),
		})
	}

	result, err := h.sessionService.Submit(c.Request.Context(), submissionID, middleware.GetUserID(c), answers)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
