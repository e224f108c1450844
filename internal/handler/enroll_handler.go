package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/export"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// EnrollHandler exposes enrollment lifecycle endpoints.
type EnrollHandler struct {
	service *service.EnrollService
}

// NewEnrollHandler constructs an enrollment handler.
func NewEnrollHandler(svc *service.EnrollService) *EnrollHandler {
	return &EnrollHandler{service: svc}
}

// List godoc
// @Summary List active enrollments
// @Tags Enrollments
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /enrolls [get]
func (h *EnrollHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	enrolls, pagination, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrolls, pagination)
}

// Create godoc
// @Summary Enroll student in a plan
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrolls [post]
func (h *EnrollHandler) Create(c *gin.Context) {
	var req service.CreateEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enroll, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enroll)
}

// Update godoc
// @Summary Re-enroll onto a plan
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.AmendEnrollRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrolls/{id} [put]
func (h *EnrollHandler) Update(c *gin.Context) {
	var req service.AmendEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enroll, err := h.service.Amend(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enroll, nil)
}

// Delete godoc
// @Summary Revoke enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrolls/{id} [delete]
func (h *EnrollHandler) Delete(c *gin.Context) {
	enroll, err := h.service.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enroll, nil)
}

// Export godoc
// @Summary Export active enrollments
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /enrolls/export [get]
func (h *EnrollHandler) Export(c *gin.Context) {
	dataset, err := h.service.ExportActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	stamp := time.Now().Format("20060102")
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := export.PDF(dataset, "Active Enrollments")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="enrollments-%s.pdf"`, stamp))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := export.CSV(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="enrollments-%s.csv"`, stamp))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}
