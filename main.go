package main

import (
	"context"
	"log"
	"net/http"

	"data4viz/adapters/llm"
	"data4viz/adapters/postgres"
	"data4viz/adapters/stats"
	"data4viz/app"
	"data4viz/internal"
	"data4viz/internal/config"
	"data4viz/internal/dataset"
	"data4viz/internal/migration"
	"data4viz/internal/snapshot"
	"data4viz/internal/workspace"
	"data4viz/ports"
	"data4viz/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies migrations. Only used
// when DATABASE_URL is set; the file-backed registry is the default.
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	logger := internal.NewDefaultLogger()

	// Workspace registry: Postgres when configured, JSON file otherwise
	var workspaces ports.WorkspaceRepository
	if cfg.Database.URL != "" {
		db, err := initDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		workspaces = postgres.NewWorkspaceRepository(db)
		logger.Info("[Main] workspace registry backed by PostgreSQL")
	} else {
		registry, err := workspace.NewRegistry(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("Failed to initialize workspace registry: %v", err)
		}
		workspaces = registry
		logger.Info("[Main] workspace registry backed by %s", cfg.Storage.DataDir)
	}

	datasets, err := dataset.NewStorage(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize dataset storage: %v", err)
	}

	snapshots, err := snapshot.NewStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	generator := llm.NewInsightGenerator(llmClient, cfg.AI.Model, cfg.AI.MaxTokens)

	engine := stats.NewEngine()
	insights := app.NewInsightService(datasets, engine, generator, snapshots, logger)
	server := ui.NewServer(insights, workspaces, datasets, logger)

	// Ops listener carries health and pprof endpoints off the API port
	if cfg.Profiling.Enabled {
		go func() {
			logger.Info("[Main] ops server starting on :%s", cfg.Profiling.Port)
			if err := http.ListenAndServe(":"+cfg.Profiling.Port, ui.NewOpsRouter()); err != nil {
				logger.Error("[Main] ops server failed: %v", err)
			}
		}()
	}

	logger.Info("[Main] starting API server on port %s", cfg.Server.Port)
	log.Fatal(server.Run(":" + cfg.Server.Port))
}
