package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
)

// failWithError writes the envelope matching a service or engine error.
func failWithError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	response.Fail(c, status, code)
}

// errorStatus maps an error to its HTTP status and code. Order matters:
// the attempt precondition errors wrap ErrPrecondition.
func errorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound, response.ErrAttemptNotStarted
	case errors.Is(err, attempt.ErrWrongState):
		return http.StatusConflict, response.ErrAttemptWrongState
	case errors.Is(err, attempt.ErrQuestionIndex):
		return http.StatusBadRequest, response.ErrInvalidIndex
	case errors.Is(err, attempt.ErrInvalidOption):
		return http.StatusBadRequest, response.ErrInvalidOption
	case errors.Is(err, attempt.ErrMalformedExam):
		return http.StatusUnprocessableEntity, response.ErrExamMalformed
	case errors.Is(err, attempt.ErrPrecondition):
		return http.StatusBadRequest, response.ErrInvalidPayload
	case errors.Is(err, attempt.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrVersionConflict):
		return http.StatusConflict, response.ErrVersionConflict
	case errors.Is(err, service.ErrDependencyExists):
		return http.StatusConflict, response.ErrDependencyExists
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict, response.ErrConflict
	case errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrLastAdmin):
		return http.StatusConflict, response.ErrActionForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden, response.ErrAccountInactive
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, response.ErrPasswordMismatch
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// pageQuery reads page and per_page, defaulting to 1 and 10.
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	return page, perPage
}
