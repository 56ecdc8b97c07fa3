package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aireliance/adapters/llm"
	"aireliance/internal"
	"aireliance/internal/config"
	"aireliance/internal/relay"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadRelay()
	if err != nil {
		log.Fatalf("Failed to load relay configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	handler := relay.New(relay.Config{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		AccessLog: true,
	}, client, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("AI answer relay listening on %s%s (model %s)", srv.Addr, relay.AnswerPath, cfg.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Relay failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Relay shutdown error: %v", err)
	}
}
