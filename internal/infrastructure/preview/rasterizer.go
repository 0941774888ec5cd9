package preview

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Rasterizer renders the first page of a PDF to an image. It is an optional
// capability: when no rasterization backend is installed, Available reports
// false and callers treat PDF previews as unsupported rather than failing.
type Rasterizer interface {
	// Available reports whether the rasterization backend can be used
	Available() bool
	// FirstPage renders page one of the PDF at path at the given DPI
	FirstPage(ctx context.Context, path string, dpi int) (image.Image, error)
}

// PopplerRasterizer rasterizes PDFs through the poppler pdftoppm tool.
type PopplerRasterizer struct {
	binaryPath string
	available  bool
	logger     *zap.Logger
}

// NewPopplerRasterizer creates a rasterizer backed by pdftoppm. binaryPath
// may be empty, in which case the tool is resolved from PATH. A missing
// binary is not an error: the rasterizer is constructed unavailable.
func NewPopplerRasterizer(binaryPath string, logger *zap.Logger) *PopplerRasterizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	if binaryPath == "" {
		binaryPath = "pdftoppm"
	}
	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		logger.Info("pdftoppm not found, PDF previews disabled",
			zap.String("binary", binaryPath))
		return &PopplerRasterizer{binaryPath: binaryPath, available: false, logger: logger}
	}

	return &PopplerRasterizer{binaryPath: resolved, available: true, logger: logger}
}

// Available reports whether pdftoppm was found
func (r *PopplerRasterizer) Available() bool {
	return r.available
}

// FirstPage renders page one of the PDF at the given DPI
func (r *PopplerRasterizer) FirstPage(ctx context.Context, path string, dpi int) (image.Image, error) {
	if !r.available {
		return nil, fmt.Errorf("pdftoppm is not available")
	}

	outDir, err := os.MkdirTemp("", "pdfpreview")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	outPrefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, r.binaryPath,
		"-png",
		"-r", fmt.Sprintf("%d", dpi),
		"-f", "1",
		"-l", "1",
		"-singlefile",
		path,
		outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, string(out))
	}

	f, err := os.Open(outPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no output: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rasterized page: %w", err)
	}

	return img, nil
}

// Ensure PopplerRasterizer implements Rasterizer
var _ Rasterizer = (*PopplerRasterizer)(nil)
