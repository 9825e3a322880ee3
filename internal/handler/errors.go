package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/response"
	"github.com/stemsi/exam-engine/internal/service"
	"github.com/stemsi/exam-engine/internal/validator"
)

// serviceErrors maps domain failures to their HTTP status and code.
// field names the request field a failure is reported against, if any.
var serviceErrors = []struct {
	err    error
	status int
	code   response.ErrCode
	field  string
}{
	{service.ErrInvalidExam, http.StatusBadRequest, response.ErrInvalidExam, ""},
	{service.ErrInsufficientQuestionPool, http.StatusConflict, response.ErrInsufficientQuestionPool, ""},
	{service.ErrSubmissionNotFound, http.StatusNotFound, response.ErrNotFound, ""},
	{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden, ""},
	{service.ErrAlreadyFinalized, http.StatusConflict, response.ErrAlreadyFinalized, ""},
	{service.ErrExamMissing, http.StatusGone, response.ErrExamMissing, ""},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials, ""},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken, ""},
	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound, ""},
	{service.ErrPasswordTooLong, http.StatusBadRequest, response.ErrValidation, "password"},
}

// failWithError answers with the mapped failure, or logs err and answers 500.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	for _, m := range serviceErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.field != "" {
			response.FailWithFields(c, m.status, m.code, map[string]string{m.field: m.err.Error()})
			return
		}
		response.Fail(c, m.status, m.code)
		return
	}

	_ = c.Error(err)
	log.Error().Err(err).
		Str("request_id", c.GetString(response.ContextKeyRequestID)).
		Str("path", c.FullPath()).
		Msg("Unhandled service error")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// failBinding answers a request body that failed to decode or validate.
func failBinding(c *gin.Context, fields map[string]string) {
	code := response.ErrValidation
	if _, ok := fields[validator.BodyField]; ok {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, http.StatusBadRequest, code, fields)
}
