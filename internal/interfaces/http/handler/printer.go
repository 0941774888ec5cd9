package handler

import (
	"github.com/gin-gonic/gin"

	printingapp "github.com/printhub/backend/internal/application/printing"
)

// PrinterHandler handles printer discovery and status endpoints
type PrinterHandler struct {
	BaseHandler
	printService *printingapp.PrintService
}

// NewPrinterHandler creates a new PrinterHandler
func NewPrinterHandler(printService *printingapp.PrintService) *PrinterHandler {
	return &PrinterHandler{
		printService: printService,
	}
}

// ListPrinters returns all printers known to the spooler. An unreachable
// spooler yields an empty list, not an error.
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers := h.printService.ListPrinters(c.Request.Context())
	h.Success(c, printers)
}

// GetPrinterStatus returns the state of the printer named in the query
// string, falling back to the configured default printer.
func (h *PrinterHandler) GetPrinterStatus(c *gin.Context) {
	status, err := h.printService.PrinterStatus(c.Request.Context(), c.Query("printer"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}
