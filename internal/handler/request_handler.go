package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-admin-api/internal/service"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
	"github.com/noah-isme/enroll-admin-api/pkg/response"
)

// RequestHandler exposes pending registration request endpoints.
type RequestHandler struct {
	service *service.RequestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// List returns every pending request joined with its referents.
func (h *RequestHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context()))
}

// Submit records a student's registration intent for later review.
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload service.SubmitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Approve promotes a pending request into an enrollment. The override
// flag accepts a student below the official course threshold.
func (h *RequestHandler) Approve(c *gin.Context) {
	id, err := requestIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var body struct {
		Override bool `json:"override"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	enrollment, err := h.service.Approve(c.Request.Context(), id, body.Override)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Reject discards a pending request. Rejecting an absent id is a no-op.
func (h *RequestHandler) Reject(c *gin.Context) {
	id, err := requestIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reject(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func requestIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request id")
	}
	return id, nil
}
