// Package printing contains the print-job domain model: the closed file-kind
// classification, the print job aggregate with its status state machine, and
// read-through projections of spooler-side printers and jobs.
//
// Job lifecycle:
//
//	PENDING -> PRINTING -> COMPLETED | FAILED
//	PENDING | PRINTING -> CANCELLED
//
// Terminal states (COMPLETED, FAILED, CANCELLED) never transition again.
package printing
