package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
	"github.com/stemsi/onlinexam-backend/internal/validator"
)

// ExamHandler serves exam browsing and admin exam management.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/exams?subject_id=
// GET /api/v1/admin/exams?subject_id=
// Lists exams with pagination.
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, perPage := pageQuery(c)
	subjectID, _ := strconv.Atoi(c.Query("subject_id"))

	exams, pagination, err := h.examService.List(c.Request.Context(), subjectID, page, perPage)
	if err != nil {
		failWithError(c, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// GetExamDetail godoc
// GET /api/v1/exams/:id
// Returns the exam with its questions, without answers.
func (h *ExamHandler) GetExamDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.examService.Detail(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}

// GetExam godoc
// GET /api/v1/admin/exams/:id
// Returns the exam with its questions and answers.
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	exam, err := h.examService.GetWithQuestions(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// CreateExam godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/admin/exams/:id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/admin/exams/:id
// Removes the exam and its questions. Recorded attempts stay in history.
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
