package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	printingapp "github.com/printhub/backend/internal/application/printing"
	"github.com/printhub/backend/internal/infrastructure/classify"
	"github.com/printhub/backend/internal/infrastructure/config"
	"github.com/printhub/backend/internal/infrastructure/convert"
	"github.com/printhub/backend/internal/infrastructure/logger"
	"github.com/printhub/backend/internal/infrastructure/office"
	"github.com/printhub/backend/internal/infrastructure/preview"
	"github.com/printhub/backend/internal/infrastructure/spooler"
	"github.com/printhub/backend/internal/infrastructure/storage"
	"github.com/printhub/backend/internal/interfaces/http/handler"
	"github.com/printhub/backend/internal/interfaces/http/middleware"
	"github.com/printhub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting print service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Upload storage with preview cascade
	store, err := storage.NewUploadStore(&storage.UploadStoreConfig{
		Dir:        cfg.Upload.Dir,
		PreviewDir: cfg.Preview.Dir,
		Logger:     log,
	})
	if err != nil {
		log.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	classifier := classify.NewClassifier(log)
	extractor := office.NewExtractor(log)

	// Preview generation. The rasterizer degrades to no PDF previews when
	// pdftoppm is not installed.
	generator, err := preview.NewGenerator(&preview.Config{
		Dir:        cfg.Preview.Dir,
		MaxWidth:   cfg.Preview.MaxWidth,
		MaxHeight:  cfg.Preview.MaxHeight,
		Rasterizer: preview.NewPopplerRasterizer(cfg.Preview.PdftoppmPath, log),
		Extractor:  extractor,
		Logger:     log,
	})
	if err != nil {
		log.Fatal("Failed to initialize preview generator", zap.Error(err))
	}

	renderer := newRenderer(cfg, log)
	normalizer := convert.NewNormalizer(renderer, extractor, log)
	defer func() {
		if err := normalizer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Spooler gateway connects lazily on first use
	gateway := spooler.NewGateway(&spooler.Config{
		Host:     cfg.CUPS.Host,
		Port:     cfg.CUPS.Port,
		Username: cfg.CUPS.Username,
		Password: cfg.CUPS.Password,
		UseTLS:   cfg.CUPS.UseTLS,
		Logger:   log,
	})

	printService := printingapp.NewPrintService(
		store,
		classifier,
		normalizer,
		gateway,
		printingapp.NewJobRegistry(),
		cfg.Print.DefaultPrinter,
		log,
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Static serving of raw uploads and preview artifacts
	engine.Static("/uploads", cfg.Upload.Dir)
	engine.Static("/previews", cfg.Preview.Dir)

	// API key enforcement applies to everything except /api/health
	authMiddleware := middleware.APIKey(middleware.APIKeyConfig{
		RequireKey: cfg.Auth.RequireKey,
		APIKey:     cfg.Auth.APIKey,
	})

	fileHandler := handler.NewFileHandler(store, classifier, generator, cfg.Upload, log)
	printHandler := handler.NewPrintHandler(printService)
	printerHandler := handler.NewPrinterHandler(printService)
	systemHandler := handler.NewSystemHandler()

	router.NewRouter(engine).
		Register(handler.SystemRoutes(systemHandler)).
		Register(handler.PrinterRoutes(printerHandler, authMiddleware)).
		Register(handler.FileRoutes(fileHandler, authMiddleware)).
		Register(handler.PrintRoutes(printHandler, authMiddleware)).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newRenderer builds the configured HTML-to-PDF engine. A broken wkhtmltopdf
// install falls back to chromedp rather than failing startup; office
// conversions surface errors per request if neither engine works.
func newRenderer(cfg *config.Config, log *zap.Logger) convert.PDFRenderer {
	if cfg.Render.Engine == "wkhtmltopdf" {
		renderer, err := convert.NewWkhtmltopdfRenderer(&convert.WkhtmltopdfConfig{
			BinaryPath:     cfg.Render.WkhtmltopdfPath,
			DefaultTimeout: cfg.Render.Timeout,
			Logger:         log,
		})
		if err == nil {
			log.Info("Using wkhtmltopdf renderer")
			return renderer
		}
		log.Warn("wkhtmltopdf unavailable, falling back to chromedp", zap.Error(err))
	}

	renderer, err := convert.NewChromedpRenderer(&convert.ChromedpConfig{
		DefaultTimeout: cfg.Render.Timeout,
		RemoteURL:      cfg.Render.ChromeRemoteURL,
		Headless:       true,
		DisableGPU:     true,
		NoSandbox:      cfg.Render.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Warn("chromedp renderer unavailable, office conversion disabled", zap.Error(err))
		return nil
	}
	log.Info("Using chromedp renderer")
	return renderer
}
