package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/printing"
	"github.com/printhub/backend/internal/infrastructure/classify"
	"github.com/printhub/backend/internal/infrastructure/office"
)

const (
	// textPrefixLimit bounds how much of a text file is read for a preview
	textPrefixLimit = 5000
	// pdfPreviewDPI keeps first-page rasterization cheap
	pdfPreviewDPI = 72

	officeMaxParagraphs = 20
	officeMaxRows       = 20
	officeMaxCols       = 5
	officeMaxSlides     = 5
)

// Config contains configuration for the preview generator
type Config struct {
	// Dir is the directory preview artifacts are written to
	Dir string
	// MaxWidth and MaxHeight bound the artifact dimensions in pixels
	MaxWidth  int
	MaxHeight int
	// Rasterizer is the optional PDF page rasterization capability
	Rasterizer Rasterizer
	// Extractor pulls text out of office documents for lightweight previews
	Extractor *office.Extractor
	// Logger for operations
	Logger *zap.Logger
}

// Generator produces bounded-size PNG previews for uploaded files. Preview
// generation is best-effort throughout: unsupported kinds, missing optional
// backends and malformed documents all yield "no preview" instead of errors.
type Generator struct {
	config     *Config
	rasterizer Rasterizer
	extractor  *office.Extractor
	logger     *zap.Logger
}

// NewGenerator creates a new preview generator
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Dir == "" {
		config.Dir = "/data/previews"
	}
	if config.MaxWidth <= 0 {
		config.MaxWidth = 800
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = 1000
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory %s: %w", config.Dir, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	extractor := config.Extractor
	if extractor == nil {
		extractor = office.NewExtractor(logger)
	}

	return &Generator{
		config:     config,
		rasterizer: config.Rasterizer,
		extractor:  extractor,
		logger:     logger,
	}, nil
}

// ArtifactPath returns where the preview for outputName is (or would be) stored
func (g *Generator) ArtifactPath(outputName string) string {
	return filepath.Join(g.config.Dir, outputName+".png")
}

// Generate produces a preview artifact for the file at path and returns the
// artifact path. An empty path with a nil error means "no preview": the
// kind is unsupported, an optional backend is missing, or decoding failed.
func (g *Generator) Generate(ctx context.Context, path string, kind printing.FileKind, outputName string) (string, error) {
	switch kind {
	case printing.KindImage:
		return g.imagePreview(path, outputName)
	case printing.KindPDF:
		return g.pdfPreview(ctx, path, outputName)
	case printing.KindText:
		return g.textPreview(path, outputName)
	case printing.KindOffice:
		return g.officePreview(path, outputName)
	default:
		return "", nil
	}
}

// imagePreview decodes the image and scales it to fit the configured bounds.
// Images already inside the bounds are never upscaled.
func (g *Generator) imagePreview(path, outputName string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		g.logger.Warn("failed to decode image for preview",
			zap.String("path", path), zap.Error(err))
		return "", nil
	}

	return g.publish(scaleToFit(img, g.config.MaxWidth, g.config.MaxHeight), outputName)
}

// pdfPreview rasterizes only the first page at low resolution, then scales
// it like an image preview.
func (g *Generator) pdfPreview(ctx context.Context, path, outputName string) (string, error) {
	if g.rasterizer == nil || !g.rasterizer.Available() {
		g.logger.Debug("PDF rasterizer unavailable, skipping preview",
			zap.String("path", path))
		return "", nil
	}

	img, err := g.rasterizer.FirstPage(ctx, path, pdfPreviewDPI)
	if err != nil {
		g.logger.Warn("PDF rasterization failed",
			zap.String("path", path), zap.Error(err))
		return "", nil
	}

	return g.publish(scaleToFit(img, g.config.MaxWidth, g.config.MaxHeight), outputName)
}

// textPreview reads a bounded prefix of the file and lays it out as wrapped
// lines on a canvas of exactly the configured dimensions.
func (g *Generator) textPreview(path, outputName string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		g.logger.Warn("failed to open text file for preview",
			zap.String("path", path), zap.Error(err))
		return "", nil
	}
	defer f.Close()

	prefix, err := io.ReadAll(io.LimitReader(f, textPrefixLimit))
	if err != nil {
		g.logger.Warn("failed to read text file for preview",
			zap.String("path", path), zap.Error(err))
		return "", nil
	}

	canvas := newTextCanvas(g.config.MaxWidth, g.config.MaxHeight)
	canvas.drawWrapped(string(prefix))

	return g.publish(canvas.Image(), outputName)
}

// officePreview extracts a bounded amount of plain text from the document
// and renders it through the text layout path with a header line. This is a
// lightweight approximation, not a faithful preview; extraction failures
// degrade to "no preview".
func (g *Generator) officePreview(path, outputName string) (string, error) {
	text, err := g.extractOfficeText(path)
	if err != nil {
		g.logger.Warn("office text extraction failed, skipping preview",
			zap.String("path", path), zap.Error(err))
		return "", nil
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	canvas := newTextCanvas(g.config.MaxWidth, g.config.MaxHeight)
	canvas.drawHeader(fmt.Sprintf("Document preview (%s)", filepath.Base(path)))
	canvas.drawWrapped(text)

	return g.publish(canvas.Image(), outputName)
}

// extractOfficeText pulls bounded plain text out of an office document
func (g *Generator) extractOfficeText(path string) (string, error) {
	switch classify.Extension(path) {
	case "doc", "docx":
		paragraphs, err := g.extractor.Paragraphs(path, officeMaxParagraphs)
		if err != nil {
			return "", err
		}
		lines := make([]string, len(paragraphs))
		for i, p := range paragraphs {
			lines[i] = p.Text
		}
		return strings.Join(lines, "\n"), nil

	case "xls", "xlsx":
		rows, err := g.extractor.Rows(path, officeMaxRows, officeMaxCols)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n"), nil

	case "ppt", "pptx":
		slides, err := g.extractor.Slides(path, officeMaxSlides)
		if err != nil {
			return "", err
		}
		var lines []string
		for _, slide := range slides {
			lines = append(lines, slide...)
		}
		return strings.Join(lines, "\n"), nil

	default:
		return "", fmt.Errorf("unsupported office extension: %s", classify.Extension(path))
	}
}

// publish encodes the image as PNG and moves it into place atomically so a
// half-written artifact is never visible under the final name.
func (g *Generator) publish(img image.Image, outputName string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	outputPath := g.ArtifactPath(outputName)
	tmpPath := outputPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write preview: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to publish preview: %w", err)
	}

	g.logger.Info("preview generated",
		zap.String("path", outputPath),
		zap.Int("bytes", buf.Len()))

	return outputPath, nil
}

// scaleToFit scales img down to fit within maxWidth x maxHeight preserving
// aspect ratio. Smaller images pass through unchanged.
func scaleToFit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth && bounds.Dy() <= maxHeight {
		return img
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}
