package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/domain/shared"
)

// StoredFile describes one file in the upload directory
type StoredFile struct {
	// Name is the stored filename, unique within the directory
	Name string
	// OriginalName is the client-supplied filename after sanitization
	OriginalName string
	// Path is the absolute path on disk
	Path string
	// SizeBytes is the file size
	SizeBytes int64
	// SizeHuman is the size formatted for display
	SizeHuman string
	// ModifiedAt is the last modification timestamp
	ModifiedAt time.Time
}

// UploadStoreConfig contains configuration for the upload store
type UploadStoreConfig struct {
	// Dir is the upload directory
	// Default: /data/uploads
	Dir string
	// PreviewDir holds preview artifacts cascaded on delete (optional)
	PreviewDir string
	// Logger for operations
	Logger *zap.Logger
}

// UploadStore keeps uploaded files on the local file system. Stored names
// are prefixed with a collision-resistant token so repeated uploads of the
// same filename never clash.
type UploadStore struct {
	config *UploadStoreConfig
	logger *zap.Logger
}

// NewUploadStore creates a new file system backed upload store
func NewUploadStore(config *UploadStoreConfig) (*UploadStore, error) {
	if config == nil {
		config = &UploadStoreConfig{}
	}
	if config.Dir == "" {
		config.Dir = "/data/uploads"
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", config.Dir, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UploadStore{
		config: config,
		logger: logger,
	}, nil
}

// Dir returns the upload directory
func (s *UploadStore) Dir() string {
	return s.config.Dir
}

// Save writes the upload under a unique name and returns its record
func (s *UploadStore) Save(ctx context.Context, originalName string, r io.Reader) (*StoredFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sanitized := SanitizeFilename(originalName)
	if sanitized == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "filename is empty after sanitization")
	}

	storedName := strings.ReplaceAll(uuid.New().String(), "-", "") + "_" + sanitized
	finalPath := filepath.Join(s.config.Dir, storedName)

	// Write to a temp file first so a partial upload is never visible
	tmp, err := os.CreateTemp(s.config.Dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to publish upload: %w", err)
	}

	s.logger.Info("file uploaded",
		zap.String("name", storedName),
		zap.Int64("size", written))

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload: %w", err)
	}

	return s.record(storedName, info), nil
}

// List returns all stored files, newest first
func (s *UploadStore) List(ctx context.Context) ([]StoredFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, *s.record(entry.Name(), info))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})

	return files, nil
}

// Resolve returns the absolute path of a stored file. The name may be the
// stored name or the original filename; when several uploads share an
// original name the newest one wins.
func (s *UploadStore) Resolve(ctx context.Context, name string) (string, error) {
	if err := s.checkName(name); err != nil {
		return "", err
	}

	// Exact stored name
	direct := filepath.Join(s.config.Dir, name)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	// Fall back to matching the original filename suffix
	files, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.OriginalName == name {
			return f.Path, nil
		}
	}

	return "", shared.NewDomainError("NOT_FOUND", fmt.Sprintf("file not found: %s", name))
}

// Delete removes a stored file and cascades to its preview artifact.
// A failed preview removal is logged, never escalated.
func (s *UploadStore) Delete(ctx context.Context, name string) error {
	path, err := s.Resolve(ctx, name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("file deleted", zap.String("name", filepath.Base(path)))

	if s.config.PreviewDir != "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		previewPath := filepath.Join(s.config.PreviewDir, stem+".png")
		if err := os.Remove(previewPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete preview artifact",
				zap.String("path", previewPath),
				zap.Error(err))
		}
	}

	return nil
}

// checkName rejects names that could escape the upload directory
func (s *UploadStore) checkName(name string) error {
	if name == "" || filepath.IsAbs(name) || containsDotDot(name) ||
		filepath.Base(name) != name {
		s.logger.Warn("blocked potentially malicious filename", zap.String("name", name))
		return shared.NewDomainError("INVALID_INPUT", "invalid filename")
	}
	return nil
}

// record builds a StoredFile from a directory entry
func (s *UploadStore) record(name string, info os.FileInfo) *StoredFile {
	return &StoredFile{
		Name:         name,
		OriginalName: originalName(name),
		Path:         filepath.Join(s.config.Dir, name),
		SizeBytes:    info.Size(),
		SizeHuman:    HumanSize(info.Size()),
		ModifiedAt:   info.ModTime(),
	}
}

// originalName strips the token prefix from a stored name. Names without a
// recognizable prefix are returned unchanged.
func originalName(stored string) string {
	idx := strings.Index(stored, "_")
	if idx == 32 && isHex(stored[:idx]) {
		return stored[idx+1:]
	}
	return stored
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// SanitizeFilename reduces a client-supplied filename to a safe basename
func SanitizeFilename(name string) string {
	// Drop any client-supplied directory components
	name = filepath.Base(filepath.ToSlash(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "." || cleaned == ".." {
		return ""
	}
	return cleaned
}

// HumanSize formats a byte count for display
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
