package analysis

import (
	"fmt"
	"math"

	"aireliance/domain/trial"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// BlockSummary aggregates one block of trials (AI offered or not)
type BlockSummary struct {
	Trials          int     `json:"trials"`
	Correct         int     `json:"correct"`
	Accuracy        float64 `json:"accuracy"`
	MeanConfidence  float64 `json:"mean_confidence"`
	MedianTimeTotal float64 `json:"median_time_total_ms"`
}

// Calibration relates confidence to correctness. Coefficient is the
// point-biserial correlation; PValue is two-sided.
type Calibration struct {
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
	N           int     `json:"n"`
}

// Summary is the post-session report for one participant
type Summary struct {
	Trials          int          `json:"trials"`
	Score           int          `json:"score"`
	MaxScore        int          `json:"max_score"`
	Accuracy        float64      `json:"accuracy"`
	MeanConfidence  float64      `json:"mean_confidence"`
	MedianTimeTotal float64      `json:"median_time_total_ms"`
	AIOffered       BlockSummary `json:"ai_offered"`
	NoAI            BlockSummary `json:"no_ai"`

	// AIUsageRate is the share of offered trials on which the AI was revealed
	AIUsageRate    float64      `json:"ai_usage_rate"`
	AIUsed         BlockSummary `json:"ai_used"`
	MedianTimeToAI *float64     `json:"median_time_before_ai_ms,omitempty"`
	Calibration    *Calibration `json:"calibration,omitempty"`
}

// Summarize builds the report from a result log
func Summarize(results []trial.Result) (*Summary, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to summarize")
	}

	all, err := summarizeBlock(results)
	if err != nil {
		return nil, err
	}

	var offered, none, used []trial.Result
	var beforeAI []float64
	score := 0
	for _, r := range results {
		score += r.ScoreDelta
		if r.AIOffered {
			offered = append(offered, r)
		} else {
			none = append(none, r)
		}
		if r.AIUsed {
			used = append(used, r)
			if r.TimeBeforeAI != nil {
				beforeAI = append(beforeAI, float64(*r.TimeBeforeAI))
			}
		}
	}

	s := &Summary{
		Trials:          all.Trials,
		Score:           score,
		MaxScore:        len(results) * trial.PointsPerCorrect,
		Accuracy:        all.Accuracy,
		MeanConfidence:  all.MeanConfidence,
		MedianTimeTotal: all.MedianTimeTotal,
	}

	if s.AIOffered, err = summarizeBlock(offered); err != nil {
		return nil, err
	}
	if s.NoAI, err = summarizeBlock(none); err != nil {
		return nil, err
	}
	if s.AIUsed, err = summarizeBlock(used); err != nil {
		return nil, err
	}
	if len(offered) > 0 {
		s.AIUsageRate = float64(len(used)) / float64(len(offered))
	}
	if len(beforeAI) > 0 {
		median, err := stats.Median(beforeAI)
		if err != nil {
			return nil, err
		}
		s.MedianTimeToAI = &median
	}
	s.Calibration = calibrate(results)
	return s, nil
}

func summarizeBlock(results []trial.Result) (BlockSummary, error) {
	b := BlockSummary{Trials: len(results)}
	if len(results) == 0 {
		return b, nil
	}

	confidence := make([]float64, len(results))
	times := make([]float64, len(results))
	for i, r := range results {
		if r.IsCorrect {
			b.Correct++
		}
		confidence[i] = float64(r.Confidence)
		times[i] = float64(r.TimeTotal)
	}

	var err error
	if b.MeanConfidence, err = stats.Mean(confidence); err != nil {
		return b, err
	}
	if b.MedianTimeTotal, err = stats.Median(times); err != nil {
		return b, err
	}
	b.Accuracy = float64(b.Correct) / float64(b.Trials)
	return b, nil
}

// calibrate returns nil when the correlation is undefined: fewer than three
// trials, or no variance in confidence or correctness.
func calibrate(results []trial.Result) *Calibration {
	n := len(results)
	if n < 3 {
		return nil
	}

	confidence := make([]float64, n)
	correct := make([]float64, n)
	for i, r := range results {
		confidence[i] = float64(r.Confidence)
		if r.IsCorrect {
			correct[i] = 1
		}
	}

	r := stat.Correlation(confidence, correct, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}

	c := &Calibration{Coefficient: r, N: n, PValue: 0}
	if math.Abs(r) < 1 {
		df := float64(n - 2)
		t := r * math.Sqrt(df/(1-r*r))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		c.PValue = 2 * (1 - tDist.CDF(math.Abs(t)))
	}
	return c
}
