package handlers

import (
	"net/http"

	"surya-backend/internal/report"
	"surya-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type CreateOrderRequest struct {
	PatientID uint `json:"patient_id" binding:"required"`
}

type TestResultRequest struct {
	TestName string  `json:"test_name" binding:"required"`
	Result   *string `json:"result" binding:"required"` // Present, may be empty
	RefRange *string `json:"ref_range"` // Optional
}

func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	order, err := h.entities.CreateOrder(c.Request.Context(), req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": order.ID, "order_no": order.OrderNo})
}

// AddTestResults appends a batch of results to an order.
func (h *Handlers) AddTestResults(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req []TestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	items := make([]store.TestResultInput, 0, len(req))
	for _, t := range req {
		items = append(items, store.TestResultInput{TestName: t.TestName, Result: *t.Result, RefRange: t.RefRange})
	}
	if err := h.entities.AppendTestResults(c.Request.Context(), id, items); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetOrderByID returns an order with its patient and results.
func (h *Handlers) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	order, err := h.entities.GetOrder(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	patient, err := h.entities.GetPatient(ctx, order.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	results, err := h.entities.ListTestResults(ctx, order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{
		"order":   order,
		"patient": patient,
		"tests":   results,
	}
	if order.Token != nil {
		body["public_link"] = report.PublicLink(*order.Token)
	}
	c.JSON(http.StatusOK, body)
}
