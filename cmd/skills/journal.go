package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/pkg/eval"
	"github.com/wilhg/actionskills/pkg/store"
)

var errNoJournal = errors.New("no journal configured: set --database-url or SKILLS_DATABASE_URL")

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent invocations from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()
		if a.journal == nil {
			return errNoJournal
		}
		recs, err := a.journal.Recent(cmd.Context(), journalQuery(cmd))
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), recs)
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-run journaled invocations and report status drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()
		if a.journal == nil {
			return errNoJournal
		}
		replayed, drifts, err := eval.ReplayJournal(cmd.Context(), a.journal, journalQuery(cmd), a.dispatcher)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, d := range drifts {
			fmt.Fprintf(out, "DRIFT %s %s recorded=%d replayed=%d %s\n", d.ID, d.Function, d.Recorded, d.Replayed, d.Error)
		}
		fmt.Fprintf(out, "replayed %d, drifted %d\n", replayed, len(drifts))
		if len(drifts) > 0 {
			return fmt.Errorf("%d invocations drifted", len(drifts))
		}
		return nil
	},
}

func journalQuery(cmd *cobra.Command) store.Query {
	limit, _ := cmd.Flags().GetInt("limit")
	fn, _ := cmd.Flags().GetString("function")
	return store.Query{Function: fn, Limit: limit}
}

func printRecords(out io.Writer, recs []store.InvocationRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tFUNCTION\tSTATUS\tDURATION\tERROR")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			r.CreatedAt.Format(time.RFC3339), r.ID, r.Function, r.Status, r.DurationMS, r.Error)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(replayCmd)
	journalCmd.PersistentFlags().Int("limit", store.DefaultLimit, "maximum records")
	journalCmd.PersistentFlags().String("function", "", "only this skill")
}
