package handler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/printhub/backend/internal/infrastructure/classify"
	"github.com/printhub/backend/internal/infrastructure/config"
	"github.com/printhub/backend/internal/infrastructure/preview"
	"github.com/printhub/backend/internal/infrastructure/storage"
	"github.com/printhub/backend/internal/interfaces/http/dto"
)

// FileHandler handles upload, listing, deletion and preview endpoints
type FileHandler struct {
	BaseHandler
	store      *storage.UploadStore
	classifier *classify.Classifier
	previews   *preview.Generator
	uploadCfg  config.UploadConfig
	logger     *zap.Logger
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(
	store *storage.UploadStore,
	classifier *classify.Classifier,
	previews *preview.Generator,
	uploadCfg config.UploadConfig,
	logger *zap.Logger,
) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{
		store:      store,
		classifier: classifier,
		previews:   previews,
		uploadCfg:  uploadCfg,
		logger:     logger,
	}
}

// FileResponse represents one stored file
type FileResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
	SizeHuman    string `json:"size_human"`
	ModifiedAt   string `json:"modified_at"`
	URL          string `json:"url"`
}

// UploadResponse represents the result of a file upload
type UploadResponse struct {
	FileResponse
	FileType           string `json:"file_type"`
	RequiresConversion bool   `json:"requires_conversion"`
	PreviewURL         string `json:"preview_url,omitempty"`
}

// Upload accepts a multipart file, stores it under a collision-free name,
// classifies it and generates a preview on a best-effort basis.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}

	if h.uploadCfg.MaxFileSize > 0 && fileHeader.Size > h.uploadCfg.MaxFileSize {
		h.ErrorWithCode(c, dto.ErrCodeFileTooLarge, "File exceeds the maximum allowed size")
		return
	}

	ext := classify.Extension(fileHeader.Filename)
	if !h.uploadCfg.AllowsExtension(ext) {
		h.ErrorWithCode(c, dto.ErrCodeUnsupportedType, "File type is not allowed")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	stored, err := h.store.Save(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	kind := h.classifier.Classify(stored.Path, stored.OriginalName)

	// Preview failures never fail the upload.
	previewURL := ""
	artifact, err := h.previews.Generate(c.Request.Context(), stored.Path, kind, previewStem(stored.Name))
	if err != nil {
		h.logger.Warn("Preview generation failed",
			zap.String("filename", stored.Name),
			zap.Error(err))
	} else if artifact != "" {
		previewURL = "/previews/" + filepath.Base(artifact)
	}

	h.Created(c, UploadResponse{
		FileResponse:       toFileResponse(stored),
		FileType:           kind.String(),
		RequiresConversion: kind.RequiresConversion(),
		PreviewURL:         previewURL,
	})
}

// ListFiles returns stored files, newest first
func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.store.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, toFileResponse(&files[i]))
	}
	h.Success(c, out)
}

// DeleteFile removes a stored file and its preview artifact
func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetPreview serves the preview image for a stored file, generating it on
// demand if the artifact is missing. Files with no renderable preview get 404.
func (h *FileHandler) GetPreview(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.store.Resolve(c.Request.Context(), name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stem := previewStem(filepath.Base(path))
	artifact := h.previews.ArtifactPath(stem)
	if _, err := os.Stat(artifact); err != nil {
		kind := h.classifier.Classify(path, name)
		artifact, err = h.previews.Generate(c.Request.Context(), path, kind, stem)
		if err != nil || artifact == "" {
			h.NotFound(c, "No preview available for this file")
			return
		}
	}

	c.File(artifact)
}

// previewStem maps a stored filename to its preview artifact name
func previewStem(storedName string) string {
	return strings.TrimSuffix(storedName, filepath.Ext(storedName))
}

func toFileResponse(f *storage.StoredFile) FileResponse {
	return FileResponse{
		Filename:     f.Name,
		OriginalName: f.OriginalName,
		SizeBytes:    f.SizeBytes,
		SizeHuman:    f.SizeHuman,
		ModifiedAt:   f.ModifiedAt.Format(time.RFC3339),
		URL:          "/uploads/" + f.Name,
	}
}
