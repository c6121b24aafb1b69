package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/service"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
	"github.com/noah-isme/enroll-admin-api/pkg/response"
)

// CourseHandler exposes course CRUD and occupancy endpoints.
type CourseHandler struct {
	service *service.CourseService
	stats   *service.StatsService
	exports *service.ExportService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc *service.CourseService, stats *service.StatsService, exports *service.ExportService) *CourseHandler {
	return &CourseHandler{service: svc, stats: stats, exports: exports}
}

// List returns every course with its occupancy summary.
func (h *CourseHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context()))
}

// Get returns one course summary by id.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create registers a new course.
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update edits a course; a code change cascades to dependent records.
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete removes a course together with its enrollments and pending requests.
func (h *CourseHandler) Delete(c *gin.Context) {
	cascade, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cascade)
}

// AvailableStudents lists students not yet enrolled in the course, each
// flagged with whether direct enrollment would pass the eligibility rule.
func (h *CourseHandler) AvailableStudents(c *gin.Context) {
	students, err := h.stats.AvailableStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// RosterPDF streams the course roster as a PDF attachment.
func (h *CourseHandler) RosterPDF(c *gin.Context) {
	payload, filename, err := h.exports.RosterPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
