package spooler

import (
	"context"
	"fmt"
	"sync"

	"github.com/phin1x/go-ipp"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/printing"
)

// SpoolerError reports a failed interaction with the print backend
type SpoolerError struct {
	Op      string
	Message string
	Cause   error
}

func (e *SpoolerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spooler %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("spooler %s: %s", e.Op, e.Message)
}

func (e *SpoolerError) Unwrap() error {
	return e.Cause
}

// ippClient is the subset of the go-ipp CUPS client the gateway depends on
type ippClient interface {
	TestConnection() error
	GetPrinters(attributes []string) (map[string]ipp.Attributes, error)
	GetPrinterAttributes(printer string, attributes []string) (ipp.Attributes, error)
	GetJobs(printer, class string, whichJobs string, myJobs bool, firstJobId, limit int, attributes []string) (map[int]ipp.Attributes, error)
	PrintFile(filePath, printer string, jobAttributes map[string]interface{}) (int, error)
	CancelJob(jobID int, purge bool) error
}

// Config contains configuration for the CUPS gateway
type Config struct {
	// Host of the CUPS server
	Host string
	// Port of the CUPS server (default: 631)
	Port int
	// Username and Password for authenticated servers (optional)
	Username string
	Password string
	// UseTLS enables encrypted transport to the server
	UseTLS bool
	// Logger for operations
	Logger *zap.Logger
}

// printerAttributes are the printer attributes requested from the backend
var printerAttributes = []string{
	"printer-name",
	"device-uri",
	"printer-info",
	"printer-is-shared",
	"printer-device-id",
	"printer-state",
}

// jobAttributes are the job attributes requested from the backend
var jobAttributes = []string{
	"job-id",
	"job-name",
	"job-printer-uri",
	"job-state",
	"job-originating-user-name",
	"job-k-octets",
}

// Gateway adapts the CUPS/IPP backend to the printing domain. The connection
// is established lazily and validated with a lightweight probe before each
// operation; a failed probe triggers a single transparent reconnect.
type Gateway struct {
	config *Config
	logger *zap.Logger

	mu     sync.Mutex
	client ippClient
	dial   func() ippClient
}

// NewGateway creates a new CUPS gateway. No connection is made until the
// first operation.
func NewGateway(config *Config) *Gateway {
	if config == nil {
		config = &Config{}
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 631
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gateway{
		config: config,
		logger: logger,
	}
	g.dial = func() ippClient {
		return ipp.NewCUPSClient(config.Host, config.Port, config.Username, config.Password, config.UseTLS)
	}
	return g
}

// ensureClient returns a probed client, reconnecting once if the probe fails.
// The mutex keeps concurrent callers from racing reconnects.
func (g *Gateway) ensureClient() (ippClient, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		g.client = g.dial()
	}

	if err := g.client.TestConnection(); err != nil {
		g.logger.Warn("spooler probe failed, reconnecting",
			zap.String("host", g.config.Host),
			zap.Error(err))

		g.client = g.dial()
		if err := g.client.TestConnection(); err != nil {
			g.client = nil
			return nil, &SpoolerError{Op: "connect", Message: "print backend unreachable", Cause: err}
		}
	}

	return g.client, nil
}

// ListPrinters returns all printers known to the backend. Failures soft-fail
// to an empty list with a logged error.
func (g *Gateway) ListPrinters(ctx context.Context) []printing.Printer {
	client, err := g.ensureClient()
	if err != nil {
		g.logger.Error("failed to list printers", zap.Error(err))
		return []printing.Printer{}
	}

	raw, err := client.GetPrinters(printerAttributes)
	if err != nil {
		g.logger.Error("failed to list printers", zap.Error(err))
		return []printing.Printer{}
	}

	printers := make([]printing.Printer, 0, len(raw))
	for name, attrs := range raw {
		printers = append(printers, printing.Printer{
			Name:     name,
			URI:      attrString(attrs, "device-uri"),
			DeviceID: attrString(attrs, "printer-device-id"),
			Info:     attrString(attrs, "printer-info"),
			IsShared: attrBool(attrs, "printer-is-shared"),
			State:    printing.PrinterStateFromCode(attrInt(attrs, "printer-state")),
		})
	}
	return printers
}

// PrinterStatus returns the operational state of a single printer. A probe
// or query failure is an error here rather than a soft-fail: status checks
// exist to detect exactly that.
func (g *Gateway) PrinterStatus(ctx context.Context, name string) (printing.PrinterState, error) {
	client, err := g.ensureClient()
	if err != nil {
		return printing.PrinterStateError, err
	}

	attrs, err := client.GetPrinterAttributes(name, []string{"printer-state"})
	if err != nil {
		return printing.PrinterStateError, &SpoolerError{
			Op:      "status",
			Message: fmt.Sprintf("failed to query printer %q", name),
			Cause:   err,
		}
	}

	return printing.PrinterStateFromCode(attrInt(attrs, "printer-state")), nil
}

// Submit sends the file at path to the named printer and returns the backend
// job id.
func (g *Gateway) Submit(ctx context.Context, printer, path, jobName string, copies int, pageRange string) (int, error) {
	client, err := g.ensureClient()
	if err != nil {
		return 0, err
	}

	attrs := map[string]interface{}{
		"job-name": jobName,
	}
	if copies > 1 {
		attrs["copies"] = copies
	}
	if pageRange != "" {
		attrs["page-ranges"] = pageRange
	}

	jobID, err := client.PrintFile(path, printer, attrs)
	if err != nil {
		return 0, &SpoolerError{
			Op:      "submit",
			Message: fmt.Sprintf("failed to submit job to printer %q", printer),
			Cause:   err,
		}
	}

	g.logger.Info("job submitted to spooler",
		zap.String("printer", printer),
		zap.Int("backend_job_id", jobID))

	return jobID, nil
}

// ListJobs returns the jobs currently known to the backend, optionally
// filtered to one printer. Failures soft-fail to an empty list.
func (g *Gateway) ListJobs(ctx context.Context, printerFilter string) []printing.JobSummary {
	client, err := g.ensureClient()
	if err != nil {
		g.logger.Error("failed to list backend jobs", zap.Error(err))
		return []printing.JobSummary{}
	}

	raw, err := client.GetJobs(printerFilter, "", "not-completed", false, 0, 0, jobAttributes)
	if err != nil {
		g.logger.Error("failed to list backend jobs", zap.Error(err))
		return []printing.JobSummary{}
	}

	jobs := make([]printing.JobSummary, 0, len(raw))
	for id, attrs := range raw {
		jobs = append(jobs, printing.JobSummary{
			BackendJobID: id,
			Name:         attrString(attrs, "job-name"),
			Printer:      attrString(attrs, "job-printer-uri"),
			StateCode:    attrInt(attrs, "job-state"),
			User:         attrString(attrs, "job-originating-user-name"),
			SizeBytes:    int64(attrInt(attrs, "job-k-octets")) * 1024,
		})
	}
	return jobs
}

// Cancel requests cancellation of a backend job. Cancellation is best-effort:
// the return value reports whether the backend confirmed it.
func (g *Gateway) Cancel(ctx context.Context, backendID int) bool {
	client, err := g.ensureClient()
	if err != nil {
		g.logger.Error("failed to cancel backend job",
			zap.Int("backend_job_id", backendID),
			zap.Error(err))
		return false
	}

	if err := client.CancelJob(backendID, false); err != nil {
		g.logger.Error("failed to cancel backend job",
			zap.Int("backend_job_id", backendID),
			zap.Error(err))
		return false
	}

	g.logger.Info("backend job cancelled", zap.Int("backend_job_id", backendID))
	return true
}

// attrString extracts the first string value of a named attribute
func attrString(attrs ipp.Attributes, name string) string {
	values, ok := attrs[name]
	if !ok || len(values) == 0 {
		return ""
	}
	if s, ok := values[0].Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", values[0].Value)
}

// attrInt extracts the first integer value of a named attribute
func attrInt(attrs ipp.Attributes, name string) int {
	values, ok := attrs[name]
	if !ok || len(values) == 0 {
		return 0
	}
	switch v := values[0].Value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

// attrBool extracts the first boolean value of a named attribute
func attrBool(attrs ipp.Attributes, name string) bool {
	values, ok := attrs[name]
	if !ok || len(values) == 0 {
		return false
	}
	if b, ok := values[0].Value.(bool); ok {
		return b
	}
	return false
}
