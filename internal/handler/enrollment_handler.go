package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/service"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
	"github.com/noah-isme/enroll-admin-api/pkg/response"
)

// EnrollmentHandler exposes roster endpoints.
type EnrollmentHandler struct {
	service *service.EnrollmentService
	exports *service.ExportService
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, exports *service.ExportService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, exports: exports}
}

// List returns enrollments joined with student and course detail,
// optionally filtered by course code and a student name/id search.
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := enrollmentFilter(c)
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), filter))
}

// Enroll seats a student directly, skipping the request queue.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.service.EnrollDirect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Unenroll frees a seat. Removing an absent id is a no-op.
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment id"))
		return
	}
	if err := h.service.Unenroll(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV streams the filtered roster as a CSV attachment.
func (h *EnrollmentHandler) ExportCSV(c *gin.Context) {
	filter := enrollmentFilter(c)
	payload, err := h.exports.EnrollmentsCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=enrollments.csv")
	c.Data(http.StatusOK, "text/csv", payload)
}

func enrollmentFilter(c *gin.Context) models.EnrollmentFilter {
	return models.EnrollmentFilter{
		CourseCode:  c.Query("courseCode"),
		StudentText: strings.TrimSpace(c.Query("student")),
	}
}
