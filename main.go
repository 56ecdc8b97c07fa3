package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aireliance/internal/config"
	"aireliance/internal/container"
	"aireliance/internal/errors"
	"aireliance/internal/migration"
	"aireliance/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if appConfig.Sink.Kind == config.SinkPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := initDatabase(ctx, appConfig)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize database components: %v", err)
		}
	}

	server := ui.NewServer(ui.Config{
		Addr:      ":" + appConfig.Server.Port,
		GinMode:   appConfig.Server.GinMode,
		AccessLog: true,
	}, appContainer.SessionManager, appContainer.SSEHub, appContainer.Logger)

	evictCtx, stopEviction := context.WithCancel(context.Background())
	go appContainer.SessionManager.RunEviction(evictCtx, time.Minute, appConfig.Experiment.Retention)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appContainer.Logger.Info("shutting down")
	stopEviction()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := appContainer.Shutdown(ctx); err != nil {
		log.Printf("Container shutdown error: %v", err)
	}
}
