package sink

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"
)

// sheetsRow is the camelCase row layout expected by the spreadsheet script
type sheetsRow struct {
	Trial             int    `json:"trial"`
	Claim             string `json:"claim"`
	InitialAnswer     string `json:"initialAnswer"`
	InitialConfidence int    `json:"initialConfidence"`
	AIOffered         bool   `json:"aiOffered"`
	AIRevealed        bool   `json:"aiRevealed"`
	IsCorrect         bool   `json:"isCorrect"`
	TimeBeforeAI      *int64 `json:"timeBeforeAI"`
	TimeAfterAI       *int64 `json:"timeAfterAI"`
	TimeTotal         int64  `json:"timeTotal"`
	ScoreIncrement    int    `json:"scoreIncrement"`
}

type sheetsPayload struct {
	ParticipantID string      `json:"participantID"`
	Results       []sheetsRow `json:"results"`
}

// SheetsSink posts results to a spreadsheet web-app endpoint in its
// legacy {"participantID", "results"} envelope.
type SheetsSink struct {
	url    string
	client *http.Client
	logger *internal.Logger
}

// NewSheetsSink creates a spreadsheet sink
func NewSheetsSink(url string, timeout time.Duration, logger *internal.Logger) *SheetsSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SheetsSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("SheetsSink"),
	}
}

// Name identifies the sink
func (s *SheetsSink) Name() string { return "sheets" }

// Submit posts the envelope once
func (s *SheetsSink) Submit(ctx context.Context, id core.ParticipantID, results []trial.Result) error {
	payload := sheetsPayload{ParticipantID: id.String(), Results: make([]sheetsRow, len(results))}
	for i, r := range results {
		payload.Results[i] = toSheetsRow(r)
	}
	s.logger.Debug("posting %d rows for %s", len(results), id)
	return postJSON(ctx, s.client, s.url, payload)
}

func toSheetsRow(r trial.Result) sheetsRow {
	return sheetsRow{
		Trial:             r.TrialID,
		Claim:             r.ClaimText,
		InitialAnswer:     strconv.FormatBool(r.Answer),
		InitialConfidence: r.Confidence,
		AIOffered:         r.AIOffered,
		AIRevealed:        r.AIUsed,
		IsCorrect:         r.IsCorrect,
		TimeBeforeAI:      r.TimeBeforeAI,
		TimeAfterAI:       r.TimeAfterAI,
		TimeTotal:         r.TimeTotal,
		ScoreIncrement:    r.ScoreDelta,
	}
}
