package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/application/traceability"
)

// BarcodeLookup resolves a barcode or QR code to its roll family
type BarcodeLookup interface {
	Lookup(ctx context.Context, code string) (*traceability.Result, error)
}

// BarcodeHandler handles roll traceability lookups
type BarcodeHandler struct {
	BaseHandler
	lookup BarcodeLookup
}

// NewBarcodeHandler creates a new BarcodeHandler
func NewBarcodeHandler(lookup BarcodeLookup) *BarcodeHandler {
	return &BarcodeHandler{lookup: lookup}
}

// Lookup handles GET /api/v1/barcode/:code
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	res, err := h.lookup.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}
