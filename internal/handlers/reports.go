package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"surya-backend/internal/apperr"
	"surya-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const notFoundText = "Not found"

// GenerateReport renders, stores and links the report of an order.
func (h *Handlers) GenerateReport(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	res, err := h.reports.Generate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pdf_path": res.PDFPath, "public_link": res.PublicLink})
}

// PublicReport streams the report of the order holding the token.
// Unknown tokens, orders without a report and missing files all look the same.
func (h *Handlers) PublicReport(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.entities.GetOrderByToken(ctx, c.Param("token"))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.String(http.StatusNotFound, notFoundText)
			return
		}
		h.log.Error("public report lookup failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	if !order.HasDocument() {
		c.String(http.StatusNotFound, notFoundText)
		return
	}

	doc, size, err := h.docs.Open(ctx, *order.PDFPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.log.Warn("report file missing", zap.Uint("order_id", order.ID), zap.String("path", *order.PDFPath))
			c.String(http.StatusNotFound, notFoundText)
			return
		}
		h.log.Error("open report failed", zap.Uint("order_id", order.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	defer doc.Close()

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, storage.ContentTypePDF, doc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s.pdf"`, order.OrderNo),
	})
}
