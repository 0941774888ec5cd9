package printing

import (
	"time"

	"github.com/printhub/backend/internal/domain/printing"
)

// PrintRequest represents a request to print an uploaded file
type PrintRequest struct {
	Filename  string `json:"filename" binding:"required"`
	Printer   string `json:"printer"`
	Copies    int    `json:"copies"`
	PageRange string `json:"page_range" binding:"omitempty,pagerange"`
}

// JobResponse represents a locally tracked print job
type JobResponse struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	FileType     string     `json:"file_type"`
	Printer      string     `json:"printer"`
	Copies       int        `json:"copies"`
	PageRange    string     `json:"page_range,omitempty"`
	Status       string     `json:"status"`
	BackendJobID *int       `json:"backend_job_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// BackendJobResponse represents a job tracked by the spooler backend
type BackendJobResponse struct {
	BackendJobID int    `json:"backend_job_id"`
	Name         string `json:"name"`
	Printer      string `json:"printer"`
	StateCode    int    `json:"state_code"`
	User         string `json:"user,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
}

// JobListResponse merges local jobs with a live backend query
type JobListResponse struct {
	Jobs        []JobResponse        `json:"jobs"`
	BackendJobs []BackendJobResponse `json:"backend_jobs"`
}

// PrinterResponse represents a printer known to the spooler backend
type PrinterResponse struct {
	Name     string `json:"name"`
	URI      string `json:"uri,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	Info     string `json:"info,omitempty"`
	IsShared bool   `json:"is_shared"`
	State    string `json:"state"`
}

// PrinterStatusResponse reports one printer's operational state
type PrinterStatusResponse struct {
	Printer string `json:"printer"`
	State   string `json:"state"`
}

// ConvertResponse reports the outcome of an explicit PDF conversion
type ConvertResponse struct {
	Filename    string `json:"filename"`
	PDFFilename string `json:"pdf_filename"`
	Converted   bool   `json:"converted"`
}

// toJobResponse maps a domain job to its API representation
func toJobResponse(job *printing.PrintJob) *JobResponse {
	return &JobResponse{
		ID:           job.ID,
		Filename:     job.Filename,
		FileType:     job.FileType.String(),
		Printer:      job.PrinterName,
		Copies:       job.Copies,
		PageRange:    job.PageRange,
		Status:       job.Status.String(),
		BackendJobID: job.BackendJobID,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
		Error:        job.ErrorMessage,
	}
}

// toPrinterResponse maps a domain printer to its API representation
func toPrinterResponse(p printing.Printer) PrinterResponse {
	return PrinterResponse{
		Name:     p.Name,
		URI:      p.URI,
		DeviceID: p.DeviceID,
		Info:     p.Info,
		IsShared: p.IsShared,
		State:    p.State.String(),
	}
}
