package classify

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/printing"
)

// officeExtensions are classified by extension alone. Content sniffing of
// legacy binary office formats and the zip-based OOXML containers is
// unreliable, so the extension is authoritative here.
var officeExtensions = map[string]bool{
	"doc":  true,
	"docx": true,
	"xls":  true,
	"xlsx": true,
	"ppt":  true,
	"pptx": true,
}

// textExtensions supplement content sniffing for text-like files whose
// detected MIME type may be more specific than text/plain.
var textExtensions = map[string]bool{
	"txt":  true,
	"csv":  true,
	"html": true,
	"htm":  true,
}

// Classifier assigns a FileKind to an uploaded file from content sniffing
// and the claimed filename. Classification never fails: unsniffable content
// degrades to KindOther.
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier creates a new Classifier
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify determines the effective kind of the file at path. claimedName is
// the original upload filename and supplies the extension; path points at the
// stored bytes used for sniffing.
func (c *Classifier) Classify(path, claimedName string) printing.FileKind {
	ext := Extension(claimedName)
	if ext == "" {
		ext = Extension(path)
	}

	if officeExtensions[ext] {
		return printing.KindOffice
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		c.logger.Warn("content sniffing failed, classifying as generic binary",
			zap.String("path", path),
			zap.Error(err))
		return printing.KindOther
	}

	switch {
	case mtype.Is("application/pdf") || ext == "pdf":
		return printing.KindPDF
	case strings.HasPrefix(mtype.String(), "image/"):
		return printing.KindImage
	case strings.HasPrefix(mtype.String(), "text/") || textExtensions[ext]:
		return printing.KindText
	default:
		c.logger.Debug("unrecognized content type",
			zap.String("path", path),
			zap.String("mime", mtype.String()))
		return printing.KindOther
	}
}

// DetectMIME returns the sniffed MIME type of the file, or
// application/octet-stream when sniffing fails.
func (c *Classifier) DetectMIME(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		c.logger.Warn("MIME detection failed", zap.String("path", path), zap.Error(err))
		return "application/octet-stream"
	}
	return mtype.String()
}

// Extension returns the lower-cased filename extension without the dot
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
