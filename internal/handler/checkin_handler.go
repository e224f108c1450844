package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// CheckinHandler exposes gym attendance endpoints.
type CheckinHandler struct {
	service *service.CheckinService
}

// NewCheckinHandler constructs a checkin handler.
func NewCheckinHandler(svc *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{service: svc}
}

// List godoc
// @Summary List a student's checkins
// @Tags Checkins
// @Produce json
// @Param id path string true "Student ID"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/checkins [get]
func (h *CheckinHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	history, err := h.service.List(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Create godoc
// @Summary Register a checkin
// @Tags Checkins
// @Produce json
// @Param id path string true "Student ID"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/checkins [post]
func (h *CheckinHandler) Create(c *gin.Context) {
	checkin, err := h.service.Register(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkin)
}
