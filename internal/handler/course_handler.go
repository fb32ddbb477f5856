package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/response"
	"github.com/stemsi/onlinexam-backend/internal/service"
	"github.com/stemsi/onlinexam-backend/internal/validator"
)

// CourseHandler serves course browsing and admin course management.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// GetAll godoc
// GET /api/v1/courses
// GET /api/v1/admin/courses
func (h *CourseHandler) GetAll(c *gin.Context) {
	courses, err := h.courseService.GetAll(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetByID godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Create godoc
// POST /api/v1/admin/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Update godoc
// PUT /api/v1/admin/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Delete godoc
// DELETE /api/v1/admin/courses/:id
// Fails with DEPENDENCY_EXISTS while subjects still belong to the course.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
