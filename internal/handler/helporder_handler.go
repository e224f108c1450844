package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// HelpOrderHandler exposes the question/answer workflow endpoints.
type HelpOrderHandler struct {
	service *service.HelpOrderService
}

// NewHelpOrderHandler constructs a help order handler.
func NewHelpOrderHandler(svc *service.HelpOrderService) *HelpOrderHandler {
	return &HelpOrderHandler{service: svc}
}

// ListByStudent godoc
// @Summary List a student's help orders
// @Tags HelpOrders
// @Produce json
// @Param id path string true "Student ID"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/help-orders [get]
func (h *HelpOrderHandler) ListByStudent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	orders, pagination, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// ListUnanswered godoc
// @Summary List unanswered help orders
// @Tags HelpOrders
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /help-orders [get]
func (h *HelpOrderHandler) ListUnanswered(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	orders, pagination, err := h.service.ListUnanswered(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Submit godoc
// @Summary Submit a help order
// @Tags HelpOrders
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.SubmitHelpOrderRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/help-orders [post]
func (h *HelpOrderHandler) Submit(c *gin.Context) {
	var req service.SubmitHelpOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, err := h.service.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// Answer godoc
// @Summary Answer a help order
// @Tags HelpOrders
// @Accept json
// @Produce json
// @Param id path string true "Help order ID"
// @Param payload body service.AnswerHelpOrderRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Router /help-orders/{id}/answer [post]
func (h *HelpOrderHandler) Answer(c *gin.Context) {
	var req service.AnswerHelpOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, err := h.service.Answer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}
