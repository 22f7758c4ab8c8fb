package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantops/modellab/internal/contracts"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run a training cycle",
	Long: `Runs one training cycle for every mode.

By default the retrain policy applies: modes inside their cooldown or
without enough new samples are skipped. Use --force to train
unconditionally.

Example:
  go run ./cmd/modellab train
  go run ./cmd/modellab train --force`,
	RunE: runTrain,
}

var forceTrain bool

func init() {
	rootCmd.AddCommand(trainCmd)

	// Flags
	trainCmd.Flags().BoolVar(&forceTrain, "force", false, "train regardless of cooldown and sample gates")
}

func runTrain(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ModelLab Training ===")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var results map[contracts.Mode]contracts.TrainResult
	if forceTrain {
		results = make(map[contracts.Mode]contracts.TrainResult, len(contracts.AllModes))
		for _, mode := range contracts.AllModes {
			result := a.trainer.Train(ctx, mode)
			if result.Status == contracts.TrainStatusTrained {
				result.Promoted = a.gate.PromoteIfBetter(ctx, mode, result.Metrics)
				a.coordinator.MarkTrained(mode, time.Now())
			}
			results[mode] = result
		}
	} else {
		results = a.coordinator.TrainIfNeeded(ctx)
	}

	for _, mode := range contracts.AllModes {
		result := results[mode]
		switch result.Status {
		case contracts.TrainStatusTrained:
			fmt.Printf("%-12s trained  auc=%.4f p@3=%.4f sharpe=%.2f promoted=%t\n",
				mode, result.Metrics.AUC, result.Metrics.PrecisionAt3,
				result.Metrics.SharpeRatio, result.Promoted)
		default:
			fmt.Printf("%-12s %s", mode, result.Status)
			if result.Reason != "" {
				fmt.Printf("  (%s)", result.Reason)
			}
			fmt.Println()
		}
	}

	return nil
}
