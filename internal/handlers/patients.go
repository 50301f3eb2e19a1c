package handlers

import (
	"net/http"

	"surya-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// --- Structs for Request Binding ---

type CreatePatientRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"` // Optional
	Email *string `json:"email"` // Optional
}

// --- Handler Functions ---

func (h *Handlers) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	patient, err := h.entities.CreatePatient(c.Request.Context(), store.PatientInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": patient.ID})
}

func (h *Handlers) GetPatientByID(c *gin.Context) {
	id, ok := parseID(c, "patient")
	if !ok {
		return
	}

	patient, err := h.entities.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}
