// Package relay serves the AI answer endpoint the experiment's oracle
// gateway calls. It keeps the provider key on the server side.
package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"aireliance/internal"
	"aireliance/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AnswerPath is the route of the verdict endpoint
const AnswerPath = "/api/get-ai-answer"

const promptTemplate = "Is this claim true or false? Answer with just \"True\" or \"False\" followed by a brief 1-2 sentence explanation.\n\nClaim: %s"

// Config holds the model parameters of the relay
type Config struct {
	Model     string
	MaxTokens int

	// AccessLog enables chi's request logger
	AccessLog bool
}

// Relay is the HTTP handler for the AI answer endpoint
type Relay struct {
	router *chi.Mux
	client ports.LLMClient
	config Config
	logger *internal.Logger
}

// New creates a relay with its routes installed
func New(config Config, client ports.LLMClient, logger *internal.Logger) *Relay {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	r := &Relay{
		router: chi.NewRouter(),
		client: client,
		config: config,
		logger: logger.With("Relay"),
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// ServeHTTP implements http.Handler
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func (r *Relay) setupMiddleware() {
	if r.config.AccessLog {
		r.router.Use(middleware.Logger)
	}
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors)
}

func (r *Relay) setupRoutes() {
	r.router.Options(AnswerPath, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.router.Post(AnswerPath, r.handleAnswer)
	r.router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})
	r.router.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

type answerRequest struct {
	Claim string `json:"claim"`
}

func (r *Relay) handleAnswer(w http.ResponseWriter, req *http.Request) {
	var body answerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 16<<10)).Decode(&body); err != nil {
		r.logger.Warn("invalid request body: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	claim := strings.TrimSpace(body.Claim)
	if claim == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "claim is required"})
		return
	}

	answer, err := r.client.ChatCompletion(req.Context(), r.config.Model, fmt.Sprintf(promptTemplate, claim), r.config.MaxTokens)
	if err != nil {
		r.logger.Error("API error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get AI response"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
