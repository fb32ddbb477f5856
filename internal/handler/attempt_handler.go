package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/middleware"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
	"github.com/stemsi/onlinexam-backend/internal/validator"
)

// AttemptHandler drives a user's exam attempt over REST.
type AttemptHandler struct {
	sessionService *service.ExamSessionService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(sessionService *service.ExamSessionService) *AttemptHandler {
	return &AttemptHandler{sessionService: sessionService}
}

// attemptTarget resolves the caller and the exam from the request.
func attemptTarget(c *gin.Context) (userID, examID int, ok bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, 0, false
	}
	examID, ok = paramID(c, "id")
	return claims.UserID, examID, ok
}

// StartAttempt godoc
// POST /api/v1/exams/:id/attempt
// Opens an attempt with an empty answer set, or resumes the open one.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Start(c.Request.Context(), userID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}

// GetAttempt godoc
// GET /api/v1/exams/:id/attempt
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	st, err := h.sessionService.State(userID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}

// SelectAnswer godoc
// PUT /api/v1/exams/:id/attempt/answers/:index
// Records the chosen option for the question at a zero-based index.
func (h *AttemptHandler) SelectAnswer(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.sessionService.SelectAnswer(userID, examID, index, req.Answer)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}

// SubmitAttempt godoc
// POST /api/v1/exams/:id/attempt/submit
// Grades the attempt. A history write failure still returns the score,
// with persisted=false and a warning.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	res, err := h.sessionService.Submit(c.Request.Context(), userID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// RetakeAttempt godoc
// POST /api/v1/exams/:id/attempt/retake
func (h *AttemptHandler) RetakeAttempt(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	st, err := h.sessionService.Retake(userID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, st)
}

// GetHistory godoc
// GET /api/v1/exams/:id/history
// Lists the caller's attempts on the exam in submission order.
func (h *AttemptHandler) GetHistory(c *gin.Context) {
	userID, examID, ok := attemptTarget(c)
	if !ok {
		return
	}

	attempts, err := h.sessionService.History(c.Request.Context(), userID, examID)
	if err != nil {
		failWithError(c, err)
		return
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
