package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/pkg/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval <dir>",
	Short: "Run event fixtures and score the envelopes they produce",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()
		return runEval(cmd.Context(), a.dispatcher, args[0], minScore, cmd.OutOrStdout())
	},
}

func runEval(ctx context.Context, h eval.Handler, dir string, minScore float64, out io.Writer) error {
	score, total, passed, details, err := eval.EvaluateFixtures(ctx, os.DirFS(dir), ".", h)
	if err != nil {
		return err
	}
	for _, d := range details {
		fmt.Fprintln(out, "FAIL", d)
	}
	fmt.Fprintf(out, "passed %d/%d score=%.2f\n", passed, total, score)
	if score < minScore {
		return fmt.Errorf("score %.2f below minimum %.2f", score, minScore)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Float64("min-score", 1, "fail when the score is below this value")
}
