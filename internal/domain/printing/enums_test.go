package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileKind_IsValid(t *testing.T) {
	for _, k := range AllFileKinds() {
		assert.True(t, k.IsValid(), "kind %s should be valid", k)
	}
	assert.False(t, FileKind("SPREADSHEET").IsValid())
	assert.False(t, FileKind("").IsValid())
}

func TestFileKind_RequiresConversion(t *testing.T) {
	assert.True(t, KindOffice.RequiresConversion())
	assert.False(t, KindImage.RequiresConversion())
	assert.False(t, KindPDF.RequiresConversion())
	assert.False(t, KindText.RequiresConversion())
	assert.False(t, KindOther.RequiresConversion())
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusPrinting.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusPending, JobStatusPrinting, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusPrinting, JobStatusCompleted, true},
		{JobStatusPrinting, JobStatusFailed, true},
		{JobStatusPrinting, JobStatusCancelled, true},
		{JobStatusPrinting, JobStatusPending, false},
		{JobStatusCompleted, JobStatusCancelled, false},
		{JobStatusFailed, JobStatusPending, false},
		{JobStatusCancelled, JobStatusPrinting, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPrinterStateFromCode(t *testing.T) {
	assert.Equal(t, PrinterStateIdle, PrinterStateFromCode(3))
	assert.Equal(t, PrinterStateProcessing, PrinterStateFromCode(4))
	assert.Equal(t, PrinterStateStopped, PrinterStateFromCode(5))
	assert.Equal(t, PrinterStateUnknown, PrinterStateFromCode(0))
	assert.Equal(t, PrinterStateUnknown, PrinterStateFromCode(99))
}
