package printing

// Printer is a read-through projection of a printer known to the spooler
// backend. It is always fetched fresh; nothing in this process owns or
// caches printer state.
type Printer struct {
	Name     string       // Queue name at the backend
	URI      string       // Device connection URI
	DeviceID string       // IEEE 1284 device id string, if reported
	State    PrinterState // Operational state at query time
	IsShared bool         // Whether the queue is shared by the backend
	Info     string       // Human-readable description
}

// JobSummary describes a job as reported by the spooler backend. Backend jobs
// are the backend's own view and are never cached locally.
type JobSummary struct {
	BackendJobID int    // Backend-assigned job id
	Name         string // Job name at the backend
	Printer      string // Queue the job belongs to
	StateCode    int    // Raw backend job-state code
	User         string // Submitting user as known to the backend
	SizeBytes    int64  // Spooled size in bytes
}
