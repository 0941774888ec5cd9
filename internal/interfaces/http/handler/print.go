package handler

import (
	"github.com/gin-gonic/gin"

	printingapp "github.com/printhub/backend/internal/application/printing"
	"github.com/printhub/backend/internal/interfaces/http/dto"
)

// PrintHandler handles print submission and job lifecycle endpoints
type PrintHandler struct {
	BaseHandler
	printService *printingapp.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *printingapp.PrintService) *PrintHandler {
	return &PrintHandler{
		printService: printService,
	}
}

// ConvertRequest represents a request to normalize a stored file to PDF
type ConvertRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// Print submits a stored file to the spooler, converting it to PDF first
// when the format requires it.
func (h *PrintHandler) Print(c *gin.Context) {
	var req printingapp.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if req.Copies == 0 {
		req.Copies = 1
	}

	job, err := h.printService.Print(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, job)
}

// Convert normalizes a stored file to PDF without printing it
func (h *PrintHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	result, err := h.printService.Convert(c.Request.Context(), req.Filename)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListJobs returns all tracked jobs together with the spooler's live queue
func (h *PrintHandler) ListJobs(c *gin.Context) {
	h.Success(c, h.printService.ListJobs(c.Request.Context()))
}

// GetJob returns one tracked job by its ID
func (h *PrintHandler) GetJob(c *gin.Context) {
	job, err := h.printService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// CancelJob cancels a tracked job. Cancelling an already-terminal job is a
// no-op that returns the job unchanged.
func (h *PrintHandler) CancelJob(c *gin.Context) {
	job, err := h.printService.CancelJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}
