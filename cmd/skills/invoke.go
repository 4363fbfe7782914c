package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/pkg/actiongroup"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke [event.json]",
	Short: "Dispatch one action-group event and print the envelope",
	Long:  `Reads an event from the given file, or from stdin when the argument is omitted or "-".`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			in = f
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()
		return invoke(cmd.Context(), a.dispatcher, in, cmd.OutOrStdout())
	},
}

func invoke(ctx context.Context, d *actiongroup.Dispatcher, in io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}
	b, err := actiongroup.Marshal(d.HandleJSON(ctx, raw))
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

func init() {
	rootCmd.AddCommand(invokeCmd)
}
