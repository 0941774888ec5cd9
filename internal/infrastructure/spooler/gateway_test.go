package spooler

import (
	"context"
	"errors"
	"testing"

	"github.com/phin1x/go-ipp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printhub/backend/internal/domain/printing"
)

type fakeIPP struct {
	probeErr error

	printers    map[string]ipp.Attributes
	printersErr error

	printerAttrs    ipp.Attributes
	printerAttrsErr error

	jobs    map[int]ipp.Attributes
	jobsErr error

	printJobID     int
	printErr       error
	lastPrintAttrs map[string]interface{}

	cancelErr error
	cancelled []int
}

func (f *fakeIPP) TestConnection() error { return f.probeErr }

func (f *fakeIPP) GetPrinters(attributes []string) (map[string]ipp.Attributes, error) {
	return f.printers, f.printersErr
}

func (f *fakeIPP) GetPrinterAttributes(printer string, attributes []string) (ipp.Attributes, error) {
	return f.printerAttrs, f.printerAttrsErr
}

func (f *fakeIPP) GetJobs(printer, class string, whichJobs string, myJobs bool, firstJobId, limit int, attributes []string) (map[int]ipp.Attributes, error) {
	return f.jobs, f.jobsErr
}

func (f *fakeIPP) PrintFile(filePath, printer string, jobAttributes map[string]interface{}) (int, error) {
	f.lastPrintAttrs = jobAttributes
	return f.printJobID, f.printErr
}

func (f *fakeIPP) CancelJob(jobID int, purge bool) error {
	f.cancelled = append(f.cancelled, jobID)
	return f.cancelErr
}

func attr(value interface{}) []ipp.Attribute {
	return []ipp.Attribute{{Value: value}}
}

// newTestGateway wires the gateway to a sequence of fake clients: each dial
// hands out the next one.
func newTestGateway(clients ...ippClient) (*Gateway, *int) {
	g := NewGateway(&Config{Host: "cups.local"})
	dials := 0
	g.dial = func() ippClient {
		c := clients[min(dials, len(clients)-1)]
		dials++
		return c
	}
	return g, &dials
}

func TestGateway_DefaultDial(t *testing.T) {
	g := NewGateway(&Config{Host: "cups.local", Port: 631})

	client := g.dial()
	require.NotNil(t, client)
	assert.IsType(t, &ipp.CUPSClient{}, client)
}

func TestGateway_LazyConnect(t *testing.T) {
	fake := &fakeIPP{printers: map[string]ipp.Attributes{}}
	g, dials := newTestGateway(fake)

	assert.Equal(t, 0, *dials)
	g.ListPrinters(context.Background())
	assert.Equal(t, 1, *dials)

	// Established connection is reused
	g.ListPrinters(context.Background())
	assert.Equal(t, 1, *dials)
}

func TestGateway_ReconnectOnProbeFailure(t *testing.T) {
	t.Run("transparent reconnect returns fresh results", func(t *testing.T) {
		broken := &fakeIPP{probeErr: errors.New("connection reset")}
		healthy := &fakeIPP{printers: map[string]ipp.Attributes{
			"office": {
				"device-uri":    attr("ipp://cups.local/printers/office"),
				"printer-state": attr(3),
			},
		}}
		g, dials := newTestGateway(broken, healthy)

		printers := g.ListPrinters(context.Background())
		require.Len(t, printers, 1)
		assert.Equal(t, "office", printers[0].Name)
		assert.Equal(t, printing.PrinterStateIdle, printers[0].State)
		assert.Equal(t, 2, *dials)
	})

	t.Run("failed reconnect soft-fails listing to empty", func(t *testing.T) {
		broken := &fakeIPP{probeErr: errors.New("connection refused")}
		g, _ := newTestGateway(broken)

		printers := g.ListPrinters(context.Background())
		assert.Empty(t, printers)

		jobs := g.ListJobs(context.Background(), "")
		assert.Empty(t, jobs)
	})

	t.Run("failed reconnect is an error for submit", func(t *testing.T) {
		broken := &fakeIPP{probeErr: errors.New("connection refused")}
		g, _ := newTestGateway(broken)

		_, err := g.Submit(context.Background(), "office", "/data/doc.pdf", "doc.pdf", 1, "")
		var spoolErr *SpoolerError
		require.ErrorAs(t, err, &spoolErr)
		assert.Equal(t, "connect", spoolErr.Op)
	})
}

func TestGateway_Submit(t *testing.T) {
	t.Run("returns backend job id", func(t *testing.T) {
		fake := &fakeIPP{printJobID: 42}
		g, _ := newTestGateway(fake)

		id, err := g.Submit(context.Background(), "office", "/data/doc.pdf", "doc.pdf", 3, "1-5")
		require.NoError(t, err)
		assert.Equal(t, 42, id)
		assert.Equal(t, 3, fake.lastPrintAttrs["copies"])
		assert.Equal(t, "1-5", fake.lastPrintAttrs["page-ranges"])
		assert.Equal(t, "doc.pdf", fake.lastPrintAttrs["job-name"])
	})

	t.Run("single copy and empty range are omitted from job attributes", func(t *testing.T) {
		fake := &fakeIPP{printJobID: 7}
		g, _ := newTestGateway(fake)

		_, err := g.Submit(context.Background(), "office", "/data/doc.pdf", "doc.pdf", 1, "")
		require.NoError(t, err)
		assert.NotContains(t, fake.lastPrintAttrs, "copies")
		assert.NotContains(t, fake.lastPrintAttrs, "page-ranges")
	})

	t.Run("backend rejection surfaces SpoolerError", func(t *testing.T) {
		fake := &fakeIPP{printErr: errors.New("printer not found")}
		g, _ := newTestGateway(fake)

		_, err := g.Submit(context.Background(), "ghost", "/data/doc.pdf", "doc.pdf", 1, "")
		var spoolErr *SpoolerError
		require.ErrorAs(t, err, &spoolErr)
		assert.Equal(t, "submit", spoolErr.Op)
	})
}

func TestGateway_PrinterStatus(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		state printing.PrinterState
	}{
		{"idle", 3, printing.PrinterStateIdle},
		{"processing", 4, printing.PrinterStateProcessing},
		{"stopped", 5, printing.PrinterStateStopped},
		{"unknown code", 99, printing.PrinterStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeIPP{printerAttrs: ipp.Attributes{"printer-state": attr(tt.code)}}
			g, _ := newTestGateway(fake)

			state, err := g.PrinterStatus(context.Background(), "office")
			require.NoError(t, err)
			assert.Equal(t, tt.state, state)
		})
	}

	t.Run("query failure is an error", func(t *testing.T) {
		fake := &fakeIPP{printerAttrsErr: errors.New("no such printer")}
		g, _ := newTestGateway(fake)

		state, err := g.PrinterStatus(context.Background(), "ghost")
		require.Error(t, err)
		assert.Equal(t, printing.PrinterStateError, state)
	})
}

func TestGateway_ListJobs(t *testing.T) {
	fake := &fakeIPP{jobs: map[int]ipp.Attributes{
		42: {
			"job-name":                  attr("report.pdf"),
			"job-state":                 attr(5),
			"job-originating-user-name": attr("alice"),
			"job-k-octets":              attr(12),
		},
	}}
	g, _ := newTestGateway(fake)

	jobs := g.ListJobs(context.Background(), "")
	require.Len(t, jobs, 1)
	assert.Equal(t, 42, jobs[0].BackendJobID)
	assert.Equal(t, "report.pdf", jobs[0].Name)
	assert.Equal(t, "alice", jobs[0].User)
	assert.Equal(t, int64(12*1024), jobs[0].SizeBytes)
}

func TestGateway_Cancel(t *testing.T) {
	t.Run("confirmed cancel returns true", func(t *testing.T) {
		fake := &fakeIPP{}
		g, _ := newTestGateway(fake)

		assert.True(t, g.Cancel(context.Background(), 42))
		assert.Equal(t, []int{42}, fake.cancelled)
	})

	t.Run("backend failure returns false", func(t *testing.T) {
		fake := &fakeIPP{cancelErr: errors.New("job already done")}
		g, _ := newTestGateway(fake)

		assert.False(t, g.Cancel(context.Background(), 42))
	})

	t.Run("unreachable backend returns false", func(t *testing.T) {
		broken := &fakeIPP{probeErr: errors.New("connection refused")}
		g, _ := newTestGateway(broken)

		assert.False(t, g.Cancel(context.Background(), 42))
	})
}
