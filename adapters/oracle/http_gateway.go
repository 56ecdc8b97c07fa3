package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aireliance/internal"
	"aireliance/ports"

	"golang.org/x/sync/semaphore"
)

// maxResponseBytes caps how much of a relay response is read
const maxResponseBytes = 64 << 10

// Config holds settings for the HTTP oracle gateway
type Config struct {
	URL           string
	Timeout       time.Duration
	MaxConcurrent int64
}

// HTTPGateway implements ports.OracleGateway against the AI answer relay:
// POST {"claim": ...} -> {"answer": ...}.
type HTTPGateway struct {
	url    string
	client *http.Client
	sem    *semaphore.Weighted
	logger *internal.Logger
}

// NewHTTPGateway creates a gateway. MaxConcurrent bounds simultaneous relay
// calls across all sessions of the process.
func NewHTTPGateway(config Config, logger *internal.Logger) (*HTTPGateway, error) {
	if strings.TrimSpace(config.URL) == "" {
		return nil, fmt.Errorf("oracle URL is required")
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 8
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HTTPGateway{
		url:    config.URL,
		client: &http.Client{Timeout: config.Timeout},
		sem:    semaphore.NewWeighted(config.MaxConcurrent),
		logger: logger.With("OracleGateway"),
	}, nil
}

type verdictRequest struct {
	Claim string `json:"claim"`
}

type verdictResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

// FetchVerdict asks the relay for a verdict. Every failure is logged and
// mapped to ports.FailureSentinel.
func (g *HTTPGateway) FetchVerdict(ctx context.Context, claimText string) string {
	answer, err := g.fetch(ctx, claimText)
	if err != nil {
		g.logger.Warn("verdict unavailable: %v", err)
		return ports.FailureSentinel
	}
	return answer
}

func (g *HTTPGateway) fetch(ctx context.Context, claimText string) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for relay slot: %w", err)
	}
	defer g.sem.Release(1)

	raw, err := json.Marshal(verdictRequest{Claim: claimText})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("relay http %d: %s", resp.StatusCode, strings.TrimSpace(string(respRaw)))
	}

	var decoded verdictResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("relay reported error: %s", decoded.Error)
	}
	answer := strings.TrimSpace(decoded.Answer)
	if answer == "" {
		return "", fmt.Errorf("relay response missing answer")
	}

	g.logger.Debug("verdict received in %s", time.Since(start).Round(time.Millisecond))
	return answer, nil
}
