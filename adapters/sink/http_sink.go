package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"
)

// Record is one row of the canonical submission payload
type Record struct {
	ParticipantID string `json:"participant_id"`
	trial.Result
}

// HTTPSink posts the finished result log as a JSON array of records.
// Any 2xx is success; the response body is not parsed.
type HTTPSink struct {
	url    string
	client *http.Client
	logger *internal.Logger
}

// NewHTTPSink creates the canonical HTTP sink
func NewHTTPSink(url string, timeout time.Duration, logger *internal.Logger) *HTTPSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("HTTPSink"),
	}
}

// Name identifies the sink in logs and submission errors
func (s *HTTPSink) Name() string { return "http" }

// Submit performs a single POST; there is no retry
func (s *HTTPSink) Submit(ctx context.Context, id core.ParticipantID, results []trial.Result) error {
	records := make([]Record, len(results))
	for i, r := range results {
		records[i] = Record{ParticipantID: id.String(), Result: r}
	}
	s.logger.Debug("posting %d records for %s", len(records), id)
	return postJSON(ctx, s.client, s.url, records)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
