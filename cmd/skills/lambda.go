package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/pkg/actiongroup"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda action-group handler",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()
		lambda.Start(lambdaHandler(a.dispatcher))
		return nil
	},
}

// lambdaHandler never returns an error: failures travel inside the envelope.
func lambdaHandler(d *actiongroup.Dispatcher) func(context.Context, json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		return d.HandleJSON(ctx, raw), nil
	}
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
