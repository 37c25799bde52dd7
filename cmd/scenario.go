package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robotsim/infra/logger"
	"github.com/kilianp07/robotsim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE...",
	Short: "Replay scripted commands offline and check the resulting poses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.New("scenario")
	failed := 0
	for _, path := range args {
		sc, err := scenarios.Load(path)
		if err != nil {
			return err
		}
		mismatches, err := scenarios.Run(sc, log)
		if err != nil {
			return fmt.Errorf("%s: %w", sc.Name, err)
		}
		if len(mismatches) == 0 {
			fmt.Fprintf(out, "PASS %s\n", sc.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", sc.Name)
		for _, m := range mismatches {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
	}
	return nil
}
