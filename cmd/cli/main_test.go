package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRunClaims_DefaultBank(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runClaims(&out, ""))

	assert.Contains(t, out.String(), "20 claims")
}

func TestRunClaims_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,claim,correct_answer\n1,Water is wet,true\n2,The moon is cheese,false\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, runClaims(&out, path))

	assert.Contains(t, out.String(), "Water is wet")
	assert.Contains(t, out.String(), "2 claims (1 true, 1 false)")
}

func TestRunClaims_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runClaims(&out, filepath.Join(t.TempDir(), "nope.csv")))
}

func TestRunOrder_DeterministicForParticipant(t *testing.T) {
	const participant = "3f2c1d7e-8a9b-4c5d-9e0f-112233445566"

	var first, second bytes.Buffer
	require.NoError(t, runOrder(&first, "", 42, participant, 10))
	require.NoError(t, runOrder(&second, "", 42, participant, 10))

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, 10, strings.Count(first.String(), "  AI  "))
}

func TestRunOrder_RejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runOrder(&out, "", 0, "", 10))
	assert.Error(t, runOrder(&out, "", 42, "not-a-uuid", 10))
	assert.Error(t, runOrder(&out, "", 42, "", 21))
}

func TestRunSimulate_PerfectParticipant(t *testing.T) {
	xlsxPath := filepath.Join(t.TempDir(), "run.xlsx")

	var out bytes.Buffer
	err := runSimulate(context.Background(), &out, simulateOptions{
		Seed:       7,
		AIEligible: 10,
		Accuracy:   1,
		RevealRate: 1,
		XLSXPath:   xlsxPath,
	})
	require.NoError(t, err)

	var report struct {
		ParticipantID string `json:"participant_id"`
		Notice        string `json:"notice"`
		Summary       struct {
			Trials      int     `json:"trials"`
			Score       int     `json:"score"`
			AIUsageRate float64 `json:"ai_usage_rate"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.NotEmpty(t, report.ParticipantID)
	assert.Equal(t, "Experiment complete! Your results were submitted.", report.Notice)
	assert.Equal(t, 20, report.Summary.Trials)
	assert.Equal(t, 2000, report.Summary.Score)
	assert.Equal(t, 1.0, report.Summary.AIUsageRate)

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	assert.Len(t, rows, 21)
}

func TestRunSimulate_RejectsOutOfRangeRates(t *testing.T) {
	var out bytes.Buffer
	err := runSimulate(context.Background(), &out, simulateOptions{Seed: 1, AIEligible: 10, Accuracy: 1.5})
	assert.Error(t, err)
}
