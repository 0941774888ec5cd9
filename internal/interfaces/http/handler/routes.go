package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/printhub/backend/internal/interfaces/http/router"
)

// SystemRoutes creates the route group for health endpoints. Health stays
// outside any auth middleware so probes work without credentials.
func SystemRoutes(handler *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")

	group.GET("/health", handler.Health)

	return group
}

// PrinterRoutes creates the route group for printer discovery endpoints
func PrinterRoutes(handler *PrinterHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("printers", "/printers")
	group.Use(authMiddleware)

	group.GET("", handler.ListPrinters)
	group.GET("/status", handler.GetPrinterStatus)

	return group
}

// FileRoutes creates the route group for upload and preview endpoints
func FileRoutes(handler *FileHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("files", "")
	group.Use(authMiddleware)

	group.POST("/upload", handler.Upload)
	group.GET("/files", handler.ListFiles)
	group.DELETE("/files/:filename", handler.DeleteFile)
	group.GET("/preview/:filename", handler.GetPreview)

	return group
}

// PrintRoutes creates the route group for print submission and job endpoints
func PrintRoutes(handler *PrintHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("print", "")
	group.Use(authMiddleware)

	group.POST("/print", handler.Print)
	group.POST("/convert", handler.Convert)
	group.GET("/jobs", handler.ListJobs)
	group.GET("/jobs/:id", handler.GetJob)
	group.POST("/jobs/:id/cancel", handler.CancelJob)

	return group
}
