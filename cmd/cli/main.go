package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aireliance-cli",
		Short: "Operator tools for the AI reliance experiment",
	}

	rootCmd.AddCommand(
		newClaimsCmd(),
		newOrderCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClaimsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims [claims-file]",
		Short: "Validate a claim bank file and print its contents",
		Long: `Load a claim bank from an .xlsx (Sheet1) or .csv file with the header
id,claim,correct_answer and print it. Without a file the built-in bank is shown.

Example: aireliance-cli claims pilot_claims.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runClaims(cmd.OutOrStdout(), file)
		},
	}
	return cmd
}

func newOrderCmd() *cobra.Command {
	var seed int64
	var participant string
	var claimsFile string
	var eligible int

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Preview the trial order a participant would see",
		Long: `Derive the trial order for a participant from a base seed, the same way
the server does when SESSION_SEED is set.

Example: aireliance-cli order --seed 42 --participant 3f2c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd.OutOrStdout(), claimsFile, seed, participant, eligible)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Base seed (SESSION_SEED)")
	cmd.Flags().StringVar(&participant, "participant", "", "Participant ID (default: a new random ID)")
	cmd.Flags().StringVar(&claimsFile, "claims", "", "Claim bank file (default: built-in bank)")
	cmd.Flags().IntVar(&eligible, "ai-eligible", 10, "Number of leading AI-eligible trials")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted participant through a full session",
		Long: `Run one simulated participant through every trial in process and print
the session summary. The AI answer comes from --oracle-url when set, otherwise
from a local oracle that reads the ground truth.

Example: aireliance-cli simulate --seed 7 --accuracy 0.6 --reveal-rate 0.8 --xlsx run.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "Seed for the trial order and the scripted behaviour")
	cmd.Flags().StringVar(&opts.ClaimsFile, "claims", "", "Claim bank file (default: built-in bank)")
	cmd.Flags().IntVar(&opts.AIEligible, "ai-eligible", 10, "Number of leading AI-eligible trials")
	cmd.Flags().Float64Var(&opts.Accuracy, "accuracy", 0.7, "Probability the participant answers correctly")
	cmd.Flags().Float64Var(&opts.RevealRate, "reveal-rate", 0.5, "Probability the participant reveals the AI answer when offered")
	cmd.Flags().StringVar(&opts.OracleURL, "oracle-url", "", "AI answer relay URL (default: local oracle)")
	cmd.Flags().StringVar(&opts.XLSXPath, "xlsx", "", "Write the result log to this workbook")
	return cmd
}
