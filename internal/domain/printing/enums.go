package printing

// FileKind is the classified kind of an uploaded file. It is produced once by
// the format classifier and threaded as a typed value through the preview
// generator and the PDF normalizer.
type FileKind string

const (
	KindImage  FileKind = "IMAGE"
	KindPDF    FileKind = "PDF"
	KindText   FileKind = "TEXT"
	KindOffice FileKind = "OFFICE"
	KindOther  FileKind = "OTHER"
)

// IsValid checks if the FileKind is a valid value
func (k FileKind) IsValid() bool {
	switch k {
	case KindImage, KindPDF, KindText, KindOffice, KindOther:
		return true
	}
	return false
}

// String returns the string representation of FileKind
func (k FileKind) String() string {
	return string(k)
}

// RequiresConversion reports whether a file of this kind must be normalized
// to PDF before it can be handed to the spooler.
func (k FileKind) RequiresConversion() bool {
	return k == KindOffice
}

// AllFileKinds returns all valid FileKind values
func AllFileKinds() []FileKind {
	return []FileKind{KindImage, KindPDF, KindText, KindOffice, KindOther}
}

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusPrinting  JobStatus = "PRINTING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusPrinting, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusPrinting || target == JobStatusFailed || target == JobStatusCancelled
	case JobStatusPrinting:
		return target == JobStatusCompleted || target == JobStatusFailed || target == JobStatusCancelled
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return false
	}
	return false
}

// PrinterState represents the operational state of a printer as reported by
// the spooler backend.
type PrinterState string

const (
	PrinterStateIdle       PrinterState = "idle"
	PrinterStateProcessing PrinterState = "processing"
	PrinterStateStopped    PrinterState = "stopped"
	PrinterStateUnknown    PrinterState = "unknown"
	PrinterStateError      PrinterState = "error"
)

// String returns the string representation of PrinterState
func (p PrinterState) String() string {
	return string(p)
}

// PrinterStateFromCode maps a CUPS printer-state code to a PrinterState.
// CUPS reports 3 = idle, 4 = processing, 5 = stopped.
func PrinterStateFromCode(code int) PrinterState {
	switch code {
	case 3:
		return PrinterStateIdle
	case 4:
		return PrinterStateProcessing
	case 5:
		return PrinterStateStopped
	default:
		return PrinterStateUnknown
	}
}
