package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"redline/internal/config"
	"redline/internal/domain/services"
	"redline/internal/repository/postgres"
	"redline/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed sample data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to set up schema: %v", err)
	}
	log.Printf("Schema ready")

	if *schemaOnly {
		return
	}

	if err := seedSampleData(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to seed sample data: %v", err)
	}
	log.Printf("Seed complete")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			markdown TEXT NOT NULL,
			original_markdown TEXT NOT NULL DEFAULT '',
			block_metadata JSONB NOT NULL DEFAULT '[]',
			template_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createComments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Comments + ` (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			block_id TEXT NOT NULL,
			parent_id TEXT REFERENCES ` + tables.Comments + `(id) ON DELETE CASCADE,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			selection_text TEXT NOT NULL DEFAULT '',
			start_offset INTEGER,
			end_offset INTEGER,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createComments); err != nil {
		return err
	}

	createSuggestions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Suggestions + ` (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			block_id TEXT NOT NULL,
			selection_text TEXT NOT NULL,
			improved_text TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			start_offset INTEGER,
			end_offset INTEGER,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSuggestions); err != nil {
		return err
	}

	createTemplates := `
		CREATE TABLE IF NOT EXISTS ` + tables.Templates + ` (
			name TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			sections JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createTemplates); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_document ON ` + tables.Comments + `(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `comments_document_block ON ` + tables.Comments + `(document_id, block_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `suggestions_document ON ` + tables.Suggestions + `(document_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Suggestions,
		tables.Comments,
		tables.Documents,
		tables.Templates,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}

const sampleMarkdown = `# Data Retention Policy

## Purpose

This policy defines how long records are kept and when they are destroyed.

## Scope

Applies to all employees, contractors, and systems that store company records.

## Policy Statements

- Financial records are retained for seven years.
- Customer data is retained while the account is active.
- Backups are rotated on a 90 day schedule.

## Revision History

Initial draft.
`

// seedSampleData creates one reviewable document with a comment and a
// pending suggestion, enough to exercise the review UI end to end.
func seedSampleData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) error {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	sugRepo := postgres.NewSuggestionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	docService := service.NewDocumentService(docRepo, sugRepo, txManager, logger)
	commentService := service.NewCommentService(commentRepo, docRepo, logger)
	sugService := service.NewSuggestionService(sugRepo, docRepo, logger)

	doc, err := docService.CreateDocument(ctx, &services.CreateDocumentRequest{
		Title:        "Data Retention Policy",
		Markdown:     sampleMarkdown,
		TemplateName: "policy_review",
	})
	if err != nil {
		return err
	}
	log.Printf("  created document %s (%d blocks)", doc.ID, len(doc.Blocks))

	// Comment on the scope paragraph
	var scopeBlock string
	for _, b := range doc.Blocks {
		if b.Type == "paragraph" && strings.HasPrefix(b.Content.Raw, "Applies") {
			scopeBlock = b.ID
			break
		}
	}
	if scopeBlock != "" {
		start, end := 0, 7
		comment, err := commentService.CreateComment(ctx, doc.ID, &services.CreateCommentRequest{
			BlockID:      scopeBlock,
			Author:       "reviewer",
			Content:      "Does this cover third-party processors?",
			SelectedText: "Applies",
			StartOffset:  &start,
			EndOffset:    &end,
		})
		if err != nil {
			return err
		}
		log.Printf("  created comment %s", comment.ID)

		sug, err := sugService.CreateSuggestion(ctx, doc.ID, &services.CreateSuggestionRequest{
			BlockID:      scopeBlock,
			SelectedText: "Applies",
			ImprovedText: "This policy applies",
			Reason:       "Full sentence reads better in a scope section.",
		})
		if err != nil {
			return err
		}
		log.Printf("  created suggestion %s", sug.ID)
	}

	return nil
}
