package excel

import (
	"fmt"
	"io"

	"aireliance/domain/core"
	"aireliance/domain/trial"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultHeaders = []interface{}{
	"participant_id", "position", "trial_id", "claim_text", "answer", "confidence",
	"ai_offered", "ai_used", "is_correct", "time_before_ai", "time_after_ai",
	"time_total", "score_delta",
}

// WriteResults renders a participant's result log as an xlsx workbook
func WriteResults(w io.Writer, id core.ParticipantID, results []trial.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			id.String(), i + 1, r.TrialID, r.ClaimText, r.Answer, r.Confidence,
			r.AIOffered, r.AIUsed, r.IsCorrect, optional(r.TimeBeforeAI), optional(r.TimeAfterAI),
			r.TimeTotal, r.ScoreDelta,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(resultsSheet, "D", "D", 60); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func optional(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
