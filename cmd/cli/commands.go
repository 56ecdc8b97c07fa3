package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"aireliance/adapters/excel"
	"aireliance/adapters/oracle"
	"aireliance/adapters/rng"
	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"
	"aireliance/internal/analysis"
	"aireliance/internal/experiment"
	"aireliance/internal/testkit"
	"aireliance/ports"
)

func loadBank(file string) (*claim.Bank, error) {
	if file == "" {
		return claim.DefaultBank(), nil
	}
	return excel.NewClaimReader(file, internal.NewLogger(internal.LogLevelWarn)).ReadBank()
}

func runClaims(w io.Writer, file string) error {
	bank, err := loadBank(file)
	if err != nil {
		return err
	}

	trueCount := 0
	for _, c := range bank.Claims() {
		label := "false"
		if c.GroundTruth {
			label = "true"
			trueCount++
		}
		fmt.Fprintf(w, "%4d  %-5s  %s\n", c.ID, label, c.Text)
	}
	fmt.Fprintf(w, "\n%d claims (%d true, %d false)\n", bank.Len(), trueCount, bank.Len()-trueCount)
	return nil
}

func runOrder(w io.Writer, claimsFile string, seed int64, participant string, eligible int) error {
	if seed == 0 {
		return fmt.Errorf("--seed must be non-zero; a zero seed is random per session")
	}
	bank, err := loadBank(claimsFile)
	if err != nil {
		return err
	}
	schedule, err := trial.Schedule{AIEligibleTrials: eligible}.Resolve(bank.Len())
	if err != nil {
		return err
	}

	id := core.NewParticipantID()
	if participant != "" {
		if id, err = core.ParseParticipantID(participant); err != nil {
			return fmt.Errorf("invalid participant ID: %w", err)
		}
	}

	order, err := claim.GenerateOrder(bank.Claims(), rng.NewSeededRNG(seed).SessionStream(id))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "participant %s, seed %d\n\n", id, seed)
	for i, c := range order {
		marker := "  "
		if schedule.AIEligible(i) {
			marker = "AI"
		}
		fmt.Fprintf(w, "%3d  %s  #%-3d %s\n", i+1, marker, c.ID, c.Text)
	}
	return nil
}

type simulateOptions struct {
	Seed       int64
	ClaimsFile string
	AIEligible int
	Accuracy   float64
	RevealRate float64
	OracleURL  string
	XLSXPath   string
}

func runSimulate(ctx context.Context, w io.Writer, opts simulateOptions) error {
	if opts.Accuracy < 0 || opts.Accuracy > 1 || opts.RevealRate < 0 || opts.RevealRate > 1 {
		return fmt.Errorf("--accuracy and --reveal-rate must be within [0, 1]")
	}
	bank, err := loadBank(opts.ClaimsFile)
	if err != nil {
		return err
	}

	truth := testkit.NewGroundTruthOracle(bank)
	logger := internal.NewLogger(internal.LogLevelWarn)
	var gateway ports.OracleGateway = truth
	if opts.OracleURL != "" {
		if gateway, err = oracle.NewHTTPGateway(oracle.Config{URL: opts.OracleURL, Timeout: 30 * time.Second, MaxConcurrent: 1}, logger); err != nil {
			return err
		}
	}

	clock := testkit.NewManualClock(time.Now())
	sink := testkit.NewMemorySink()
	script := rand.New(rand.NewSource(opts.Seed))

	session, err := experiment.NewSession(core.NewParticipantID(), bank, trial.Schedule{AIEligibleTrials: opts.AIEligible},
		rng.NewSeededRNG(opts.Seed).SessionStream(core.ParticipantID("simulated")),
		experiment.Dependencies{Oracle: gateway, Sink: sink, Clock: clock, Logger: logger})
	if err != nil {
		return err
	}
	if err := session.Begin(); err != nil {
		return err
	}

	think := func() { clock.Advance(time.Duration(800+script.Intn(6000)) * time.Millisecond) }

	var outcome *experiment.SubmitOutcome
	for {
		view := session.View()
		think()
		if view.AIOffered && script.Float64() < opts.RevealRate {
			if _, err := session.RequestAIReveal(); err != nil {
				return err
			}
			session.Wait()
			think()
		}

		correct := script.Float64() < opts.Accuracy
		label, _ := truth.Label(view.Claim)
		if err := session.SetAnswer(label == correct); err != nil {
			return err
		}
		if err := session.SetConfidence(trial.MinConfidence + script.Intn(trial.MaxConfidence)); err != nil {
			return err
		}

		if outcome, err = session.Submit(ctx); err != nil {
			return err
		}
		if outcome.Completed {
			break
		}
	}

	results, ok := sink.Results(session.ID())
	if !ok {
		return fmt.Errorf("submission failed: %s", outcome.Submission.Error)
	}
	summary, err := analysis.Summarize(results)
	if err != nil {
		return err
	}

	if opts.XLSXPath != "" {
		f, err := os.Create(opts.XLSXPath)
		if err != nil {
			return err
		}
		if err := excel.WriteResults(f, session.ID(), results); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"participant_id": session.ID().String(),
		"notice":         outcome.Submission.Notice(),
		"summary":        summary,
	})
}
