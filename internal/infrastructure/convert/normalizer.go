package convert

import (
	"context"
	"fmt"
	"html"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/printing"
	"github.com/printhub/backend/internal/infrastructure/classify"
	"github.com/printhub/backend/internal/infrastructure/office"
)

// Extraction limits for printing. Wider than the preview limits since the
// output is the document the user actually wants on paper.
const (
	printMaxParagraphs = 500
	printMaxRows       = 500
	printMaxCols       = 30
	printMaxSlides     = 100
)

// documentMarginMM is the uniform page margin for rendered documents
const documentMarginMM = 10.0

// ConversionError reports a failed normalization to PDF. The message carries
// only the base filename so it is safe to surface to API clients.
type ConversionError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Filename, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Filename)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func newConversionError(path, message string, cause error) *ConversionError {
	return &ConversionError{
		Filename: filepath.Base(path),
		Message:  message,
		Cause:    cause,
	}
}

// Normalizer converts uploaded files into PDF so the spooler always receives
// a printable format. PDFs and unclassified files pass through unchanged.
type Normalizer struct {
	renderer  PDFRenderer
	extractor *office.Extractor
	logger    *zap.Logger
}

// NewNormalizer creates a new PDF normalizer. renderer may be nil, in which
// case office and text conversion fail with a ConversionError.
func NewNormalizer(renderer PDFRenderer, extractor *office.Extractor, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = office.NewExtractor(logger)
	}
	return &Normalizer{
		renderer:  renderer,
		extractor: extractor,
		logger:    logger,
	}
}

// NormalizeToPDF converts the file at path to a PDF and returns the PDF path.
// path may be a glob pattern for image kinds. pdf and other kinds are
// returned unchanged. Any required conversion that cannot be completed
// returns a *ConversionError.
func (n *Normalizer) NormalizeToPDF(ctx context.Context, path string, kind printing.FileKind) (string, error) {
	switch kind {
	case printing.KindPDF, printing.KindOther:
		return path, nil
	case printing.KindImage:
		return n.imagesToPDF(path)
	case printing.KindText:
		return n.textToPDF(ctx, path)
	case printing.KindOffice:
		return n.officeToPDF(ctx, path)
	default:
		return path, nil
	}
}

// imagesToPDF composes one or more images into a single multi-page PDF.
// When path contains glob metacharacters the matched files are sorted
// lexicographically, one page per image.
func (n *Normalizer) imagesToPDF(path string) (string, error) {
	sources, err := expandImageSources(path)
	if err != nil {
		return "", newConversionError(path, "failed to resolve image source", err)
	}
	if len(sources) == 0 {
		return "", newConversionError(path, "no images matched the source pattern", nil)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	tmpDir := ""
	defer func() {
		if tmpDir != "" {
			os.RemoveAll(tmpDir)
		}
	}()

	for _, src := range sources {
		embeddable := src
		if !gofpdfSupported(src) {
			// Transcode formats gofpdf cannot embed directly
			if tmpDir == "" {
				tmpDir, err = os.MkdirTemp("", "print-images-")
				if err != nil {
					return "", newConversionError(path, "failed to create scratch directory", err)
				}
			}
			embeddable, err = transcodeToPNG(src, tmpDir)
			if err != nil {
				return "", newConversionError(src, "failed to transcode image", err)
			}
		}

		width, height, err := imageDimensions(embeddable)
		if err != nil {
			return "", newConversionError(src, "failed to read image", err)
		}

		pdf.AddPage()
		x, y, w, h := fitOnPage(width, height)
		pdf.ImageOptions(embeddable, x, y, w, h, false, gofpdf.ImageOptions{}, 0, "")
	}

	outputPath := pdfOutputPath(path)
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", newConversionError(path, "failed to write PDF", err)
	}

	n.logger.Info("images composed into PDF",
		zap.Int("pages", len(sources)),
		zap.String("output", outputPath))

	return outputPath, nil
}

// textToPDF wraps the raw text in a monospace block and renders it through
// the HTML engine.
func (n *Normalizer) textToPDF(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newConversionError(path, "failed to read text file", err)
	}

	body := fmt.Sprintf(
		`<pre style="font-family: monospace; font-size: 11px; white-space: pre-wrap; word-wrap: break-word;">%s</pre>`,
		html.EscapeString(string(data)))

	return n.renderToPDF(ctx, path, body)
}

// officeToPDF reconstructs the document as text-only HTML and renders it.
// Layout, images and styling are not preserved.
func (n *Normalizer) officeToPDF(ctx context.Context, path string) (string, error) {
	body, err := n.buildOfficeHTML(path)
	if err != nil {
		return "", newConversionError(path, "failed to extract document content", err)
	}
	if strings.TrimSpace(body) == "" {
		return "", newConversionError(path, "document contains no extractable text", nil)
	}

	return n.renderToPDF(ctx, path, body)
}

// buildOfficeHTML produces an HTML reconstruction of the document's text
func (n *Normalizer) buildOfficeHTML(path string) (string, error) {
	var buf strings.Builder

	switch classify.Extension(path) {
	case "doc", "docx":
		paragraphs, err := n.extractor.Paragraphs(path, printMaxParagraphs)
		if err != nil {
			return "", err
		}
		for _, p := range paragraphs {
			text := html.EscapeString(p.Text)
			if p.HeadingLevel > 0 {
				fmt.Fprintf(&buf, "<h%d>%s</h%d>", p.HeadingLevel, text, p.HeadingLevel)
			} else {
				fmt.Fprintf(&buf, "<p>%s</p>", text)
			}
		}

	case "xls", "xlsx":
		rows, err := n.extractor.Rows(path, printMaxRows, printMaxCols)
		if err != nil {
			return "", err
		}
		buf.WriteString(`<table border="1" cellspacing="0" cellpadding="4" style="border-collapse: collapse; font-size: 11px;">`)
		for _, row := range rows {
			buf.WriteString("<tr>")
			for _, cell := range row {
				buf.WriteString("<td>")
				buf.WriteString(html.EscapeString(cell))
				buf.WriteString("</td>")
			}
			buf.WriteString("</tr>")
		}
		buf.WriteString("</table>")

	case "ppt", "pptx":
		slides, err := n.extractor.Slides(path, printMaxSlides)
		if err != nil {
			return "", err
		}
		for i, slide := range slides {
			if i > 0 {
				buf.WriteString(`<div style="page-break-before: always;"></div>`)
			}
			fmt.Fprintf(&buf, "<h3>Slide %d</h3>", i+1)
			for _, line := range slide {
				fmt.Fprintf(&buf, "<p>%s</p>", html.EscapeString(line))
			}
		}

	default:
		return "", fmt.Errorf("unsupported office extension: %s", classify.Extension(path))
	}

	return buf.String(), nil
}

// renderToPDF runs the HTML engine and writes the result beside the source
func (n *Normalizer) renderToPDF(ctx context.Context, path, body string) (string, error) {
	if n.renderer == nil {
		return "", newConversionError(path, "no PDF rendering engine available", nil)
	}

	result, err := n.renderer.Render(ctx, &RenderRequest{
		HTML:     body,
		Title:    filepath.Base(path),
		MarginMM: documentMarginMM,
	})
	if err != nil {
		return "", newConversionError(path, "PDF rendering failed", err)
	}

	outputPath := pdfOutputPath(path)
	if err := os.WriteFile(outputPath, result.PDFData, 0644); err != nil {
		return "", newConversionError(path, "failed to write PDF", err)
	}

	n.logger.Info("document converted to PDF",
		zap.String("source", filepath.Base(path)),
		zap.String("output", outputPath),
		zap.Int("pages", result.PageCount))

	return outputPath, nil
}

// Close releases the rendering engine
func (n *Normalizer) Close() error {
	if n.renderer != nil {
		return n.renderer.Close()
	}
	return nil
}

// expandImageSources resolves a path or glob pattern into an ordered file list
func expandImageSources(path string) ([]string, error) {
	if !strings.ContainsAny(path, "*?[") {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// gofpdfSupported reports whether gofpdf can embed the image directly
func gofpdfSupported(path string) bool {
	switch classify.Extension(path) {
	case "jpg", "jpeg", "png", "gif":
		return true
	}
	return false
}

// transcodeToPNG re-encodes an image into PNG inside dir
func transcodeToPNG(path, dir string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".png")
	if err := imaging.Save(img, target); err != nil {
		return "", err
	}
	return target, nil
}

// imageDimensions reads the pixel dimensions without decoding the full image
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// fitOnPage computes the centered placement of an image on an A4 page,
// preserving aspect ratio inside the printable area
func fitOnPage(pxWidth, pxHeight int) (x, y, w, h float64) {
	areaW := a4WidthMM - 2*documentMarginMM
	areaH := a4HeightMM - 2*documentMarginMM

	aspect := float64(pxHeight) / float64(pxWidth)
	w = areaW
	h = w * aspect
	if h > areaH {
		h = areaH
		w = h / aspect
	}

	x = (a4WidthMM - w) / 2
	y = (a4HeightMM - h) / 2
	return x, y, w, h
}

// pdfOutputPath derives the output PDF path from a source path or pattern
func pdfOutputPath(path string) string {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	// Strip glob metacharacters so a pattern source yields a sane name
	stem = strings.NewReplacer("*", "", "?", "", "[", "", "]", "").Replace(stem)
	if stem == "" {
		stem = "document"
	}
	return filepath.Join(dir, stem+".pdf")
}
