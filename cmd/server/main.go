package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"redline/internal/config"
	"redline/internal/handler"
	"redline/internal/llm"
	"redline/internal/middleware"
	"redline/internal/repository/postgres"
	"redline/internal/service"
	"redline/internal/template"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logWriter io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logWriter = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	sugRepo := postgres.NewSuggestionRepository(repoConfig)
	tplRepo := postgres.NewTemplateRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Built-in template registry
	registry, err := template.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load built-in templates: %v", err)
	}

	// Anthropic client for the improve endpoint
	var improver service.TextImprover
	if cfg.AnthropicAPIKey != "" {
		improver, err = llm.NewClient(cfg.AnthropicAPIKey, cfg.ImproveModel)
		if err != nil {
			log.Fatalf("Failed to create Anthropic client: %v", err)
		}
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, improve endpoint disabled")
		improver = llm.Disabled{}
	}

	// Create services
	docService := service.NewDocumentService(docRepo, sugRepo, txManager, logger)
	commentService := service.NewCommentService(commentRepo, docRepo, logger)
	sugService := service.NewSuggestionService(sugRepo, docRepo, logger)
	improveService := service.NewImproveService(improver, logger)
	tplService := service.NewTemplateService(registry, tplRepo, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	sugHandler := handler.NewSuggestionHandler(sugService, logger)
	improveHandler := handler.NewImproveHandler(improveService, logger)
	tplHandler := handler.NewTemplateHandler(tplService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("GET /api/review/documents", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/review/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/review/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PUT /api/review/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/review/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("PUT /api/review/documents/{id}/markdown", docHandler.UpdateMarkdown)

	// Comment routes
	mux.HandleFunc("GET /api/review/documents/{id}/comments", commentHandler.ListComments)
	mux.HandleFunc("POST /api/review/documents/{id}/comments", commentHandler.CreateComment)
	mux.HandleFunc("GET /api/review/documents/{id}/comments/counts", commentHandler.UnresolvedCounts)
	mux.HandleFunc("PATCH /api/review/documents/{id}/comments/{commentID}", commentHandler.UpdateComment)
	mux.HandleFunc("DELETE /api/review/documents/{id}/comments/{commentID}", commentHandler.DeleteComment)
	mux.HandleFunc("POST /api/review/documents/{id}/comments/{commentID}/reply", commentHandler.Reply)
	mux.HandleFunc("POST /api/review/documents/{id}/comments/{commentID}/resolve", commentHandler.ToggleResolved)

	// Suggestion routes
	mux.HandleFunc("GET /api/review/documents/{id}/suggestions", sugHandler.ListSuggestions)
	mux.HandleFunc("POST /api/review/documents/{id}/suggestions", sugHandler.CreateSuggestion)
	mux.HandleFunc("PATCH /api/review/documents/{id}/suggestions/{suggestionID}", sugHandler.UpdateStatus)
	mux.HandleFunc("DELETE /api/review/documents/{id}/suggestions/{suggestionID}", sugHandler.DeleteSuggestion)

	// Improve route
	mux.HandleFunc("POST /api/review/improve", improveHandler.ImproveText)

	// Template routes
	mux.HandleFunc("GET /api/review/templates", tplHandler.ListTemplates)
	mux.HandleFunc("POST /api/review/templates", tplHandler.StoreTemplate)
	mux.HandleFunc("GET /api/review/templates/{name}", tplHandler.GetTemplate)
	mux.HandleFunc("DELETE /api/review/templates/{name}", tplHandler.DeleteTemplate)

	// Build middleware chain
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	// CORS - handles OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
