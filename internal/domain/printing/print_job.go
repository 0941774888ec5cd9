package printing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printhub/backend/internal/domain/shared"
)

// jobIDLength is the number of hex characters in a job identifier.
const jobIDLength = 8

// PrintJob represents one file being driven through the spooler backend.
// The job is tracked in-process only; it is never deleted, only transitioned
// into a terminal state.
type PrintJob struct {
	ID            string     // Short random job identifier
	Filename      string     // Original upload filename
	PrintFilePath string     // Path actually submitted to the spooler (may be a normalized PDF)
	FileType      FileKind   // Classified kind of the source file
	Copies        int        // Number of copies, at least 1
	PageRange     string     // Page-range expression, passed through verbatim
	PrinterName   string     // Target printer
	Status        JobStatus  // Current job status
	BackendJobID  *int       // Job id assigned by the spooler backend
	CreatedAt     time.Time  // When the job was created locally
	CompletedAt   *time.Time // When the job reached a terminal state
	ErrorMessage  string     // Failure detail, if any
}

// NewPrintJob creates a new print job in pending state
func NewPrintJob(filename, printFilePath string, kind FileKind, printerName string, copies int, pageRange string) (*PrintJob, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "Filename cannot be empty")
	}
	if strings.TrimSpace(printFilePath) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_PATH", "Print file path cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_FILE_KIND", "Unknown file kind: "+string(kind))
	}
	if strings.TrimSpace(printerName) == "" {
		return nil, shared.NewDomainError("INVALID_PRINTER", "Printer name cannot be empty")
	}
	if copies < 1 {
		return nil, shared.NewDomainError("INVALID_COPIES", "Number of copies must be at least 1")
	}
	if copies > 100 {
		return nil, shared.NewDomainError("INVALID_COPIES", "Number of copies cannot exceed 100")
	}

	return &PrintJob{
		ID:            NewJobID(),
		Filename:      filename,
		PrintFilePath: printFilePath,
		FileType:      kind,
		Copies:        copies,
		PageRange:     pageRange,
		PrinterName:   printerName,
		Status:        JobStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

// NewJobID generates a short random job identifier. Collision probability is
// negligible for process-lifetime job counts.
func NewJobID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:jobIDLength]
}

// MarkPrinting transitions the job to printing and records the backend job id
func (j *PrintJob) MarkPrinting(backendJobID int) error {
	if !j.Status.CanTransitionTo(JobStatusPrinting) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start printing from status: "+j.Status.String())
	}

	j.Status = JobStatusPrinting
	j.BackendJobID = &backendJobID

	return nil
}

// Complete marks the job as completed
func (j *PrintJob) Complete() error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}

	j.Status = JobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now

	return nil
}

// Fail marks the job as failed with a human-readable message
func (j *PrintJob) Fail(errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}

	j.Status = JobStatusFailed
	j.ErrorMessage = errorMessage
	now := time.Now()
	j.CompletedAt = &now

	return nil
}

// Cancel forces the job into cancelled state. Cancelling a job that already
// reached a terminal state is rejected so the terminal status is preserved.
func (j *PrintJob) Cancel() error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot cancel a job that is already in terminal status: "+j.Status.String())
	}

	j.Status = JobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now

	return nil
}

// IsPending returns true if the job is pending
func (j *PrintJob) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsPrinting returns true if the job was accepted by the backend
func (j *PrintJob) IsPrinting() bool {
	return j.Status == JobStatusPrinting
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// HasBackendJob returns true if the spooler backend assigned a job id
func (j *PrintJob) HasBackendJob() bool {
	return j.BackendJobID != nil
}
