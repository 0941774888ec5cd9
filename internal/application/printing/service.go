package printing

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/printing"
	"github.com/printhub/backend/internal/domain/shared"
)

// FileResolver resolves an uploaded filename to its path on disk
type FileResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// FileClassifier determines the effective kind of a stored file
type FileClassifier interface {
	Classify(path, claimedName string) printing.FileKind
}

// PDFNormalizer converts files into a spooler-printable format
type PDFNormalizer interface {
	NormalizeToPDF(ctx context.Context, path string, kind printing.FileKind) (string, error)
}

// SpoolerGateway is the print backend adapter consumed by the service
type SpoolerGateway interface {
	ListPrinters(ctx context.Context) []printing.Printer
	PrinterStatus(ctx context.Context, name string) (printing.PrinterState, error)
	Submit(ctx context.Context, printer, path, jobName string, copies int, pageRange string) (int, error)
	ListJobs(ctx context.Context, printerFilter string) []printing.JobSummary
	Cancel(ctx context.Context, backendID int) bool
}

// PrintService drives the print job lifecycle: resolve, classify, normalize,
// submit, and track.
type PrintService struct {
	files          FileResolver
	classifier     FileClassifier
	normalizer     PDFNormalizer
	gateway        SpoolerGateway
	registry       *JobRegistry
	defaultPrinter string
	logger         *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	files FileResolver,
	classifier FileClassifier,
	normalizer PDFNormalizer,
	gateway SpoolerGateway,
	registry *JobRegistry,
	defaultPrinter string,
	logger *zap.Logger,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewJobRegistry()
	}
	return &PrintService{
		files:          files,
		classifier:     classifier,
		normalizer:     normalizer,
		gateway:        gateway,
		registry:       registry,
		defaultPrinter: defaultPrinter,
		logger:         logger,
	}
}

// Print submits an uploaded file to the spooler. The job is visible in the
// registry before this method returns, in PRINTING on success and FAILED on
// rejection. A required conversion failure surfaces before any spooler
// contact and creates no job.
func (s *PrintService) Print(ctx context.Context, req PrintRequest) (*JobResponse, error) {
	if req.Copies < 1 {
		return nil, shared.NewDomainError("INVALID_COPIES", "Number of copies must be at least 1")
	}

	printer := req.Printer
	if printer == "" {
		printer = s.defaultPrinter
	}
	if printer == "" {
		return nil, shared.NewDomainError("INVALID_PRINTER", "No printer specified and no default configured")
	}

	path, err := s.files.Resolve(ctx, req.Filename)
	if err != nil {
		return nil, err
	}

	kind := s.classifier.Classify(path, req.Filename)

	printPath := path
	if kind.RequiresConversion() {
		printPath, err = s.normalizer.NormalizeToPDF(ctx, path, kind)
		if err != nil {
			s.logger.Error("document conversion failed",
				zap.String("filename", req.Filename),
				zap.Error(err))
			return nil, err
		}
	}

	job, err := printing.NewPrintJob(req.Filename, printPath, kind, printer, req.Copies, req.PageRange)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Add(job); err != nil {
		return nil, err
	}

	backendID, err := s.gateway.Submit(ctx, printer, printPath, req.Filename, req.Copies, req.PageRange)
	if err != nil {
		failed, updateErr := s.registry.Update(job.ID, func(j *printing.PrintJob) error {
			return j.Fail(err.Error())
		})
		if updateErr != nil {
			s.logger.Error("failed to record job failure",
				zap.String("job_id", job.ID),
				zap.Error(updateErr))
			return nil, err
		}
		s.logger.Error("job submission failed",
			zap.String("job_id", failed.ID),
			zap.String("printer", printer),
			zap.Error(err))
		return nil, err
	}

	updated, err := s.registry.Update(job.ID, func(j *printing.PrintJob) error {
		return j.MarkPrinting(backendID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("print job started",
		zap.String("job_id", updated.ID),
		zap.String("printer", printer),
		zap.Int("backend_job_id", backendID))

	return toJobResponse(updated), nil
}

// Convert normalizes an uploaded file to PDF without printing it
func (s *PrintService) Convert(ctx context.Context, filename string) (*ConvertResponse, error) {
	path, err := s.files.Resolve(ctx, filename)
	if err != nil {
		return nil, err
	}

	kind := s.classifier.Classify(path, filename)
	pdfPath, err := s.normalizer.NormalizeToPDF(ctx, path, kind)
	if err != nil {
		return nil, err
	}

	return &ConvertResponse{
		Filename:    filename,
		PDFFilename: filepath.Base(pdfPath),
		Converted:   pdfPath != path,
	}, nil
}

// CancelJob cancels a local job. When the backend assigned a job id the
// cancellation is forwarded best-effort; a backend failure never blocks the
// local transition. Cancelling a terminal job is a no-op.
func (s *PrintService) CancelJob(ctx context.Context, id string) (*JobResponse, error) {
	job, ok := s.registry.Get(id)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "job not found: "+id)
	}

	if job.IsTerminal() {
		return toJobResponse(job), nil
	}

	if job.HasBackendJob() {
		if !s.gateway.Cancel(ctx, *job.BackendJobID) {
			s.logger.Warn("backend cancel failed, forcing local cancellation",
				zap.String("job_id", id),
				zap.Int("backend_job_id", *job.BackendJobID))
		}
	}

	cancelled, err := s.registry.Update(id, func(j *printing.PrintJob) error {
		if j.IsTerminal() {
			// Raced into a terminal state since the snapshot; keep it
			return nil
		}
		return j.Cancel()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("print job cancelled", zap.String("job_id", id))
	return toJobResponse(cancelled), nil
}

// GetJob returns a single tracked job
func (s *PrintService) GetJob(ctx context.Context, id string) (*JobResponse, error) {
	job, ok := s.registry.Get(id)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "job not found: "+id)
	}
	return toJobResponse(job), nil
}

// ListJobs returns all locally tracked jobs merged with a live backend query.
// Backend jobs are never cached.
func (s *PrintService) ListJobs(ctx context.Context) *JobListResponse {
	local := s.registry.All()
	jobs := make([]JobResponse, 0, len(local))
	for _, job := range local {
		jobs = append(jobs, *toJobResponse(job))
	}

	backend := s.gateway.ListJobs(ctx, "")
	backendJobs := make([]BackendJobResponse, 0, len(backend))
	for _, j := range backend {
		backendJobs = append(backendJobs, BackendJobResponse{
			BackendJobID: j.BackendJobID,
			Name:         j.Name,
			Printer:      j.Printer,
			StateCode:    j.StateCode,
			User:         j.User,
			SizeBytes:    j.SizeBytes,
		})
	}

	return &JobListResponse{Jobs: jobs, BackendJobs: backendJobs}
}

// ListPrinters returns the printers known to the spooler backend
func (s *PrintService) ListPrinters(ctx context.Context) []PrinterResponse {
	printers := s.gateway.ListPrinters(ctx)
	out := make([]PrinterResponse, 0, len(printers))
	for _, p := range printers {
		out = append(out, toPrinterResponse(p))
	}
	return out
}

// PrinterStatus returns the operational state of one printer. An empty name
// resolves to the configured default printer.
func (s *PrintService) PrinterStatus(ctx context.Context, name string) (*PrinterStatusResponse, error) {
	if name == "" {
		name = s.defaultPrinter
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRINTER", "No printer specified and no default configured")
	}

	state, err := s.gateway.PrinterStatus(ctx, name)
	if err != nil {
		return nil, err
	}
	return &PrinterStatusResponse{Printer: name, State: state.String()}, nil
}
