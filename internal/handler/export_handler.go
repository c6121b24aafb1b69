package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/service"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
	"github.com/noah-isme/enroll-admin-api/pkg/response"
)

// ExportHandler exposes full-state backup and restore endpoints.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Backup returns a snapshot of every collection.
func (h *ExportHandler) Backup(c *gin.Context) {
	doc, err := h.service.Backup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// Restore replaces the full state with the posted backup document.
func (h *ExportHandler) Restore(c *gin.Context) {
	var doc service.BackupDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid backup document"))
		return
	}
	if err := h.service.Restore(c.Request.Context(), doc); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
