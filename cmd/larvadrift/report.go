package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/larvadrift/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Summarize a recorded run",
	Long: `Reads a recording written by "run --record" and prints the run
properties, the ensemble after every step, and how many larvae each stage
deactivated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func printReport(ctx context.Context, out io.Writer, filename string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	infos, err := datarecording.ReadExecInfo(ctx, reader)
	if err != nil {
		return err
	}

	steps, err := datarecording.ReadSteps(ctx, reader)
	if err != nil {
		return err
	}

	stages, err := datarecording.ReadStages(ctx, reader)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, info := range infos {
		fmt.Fprintf(w, "%s:\t%s\n", info.Property, info.Value)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP\tTIME\tACTIVE\tDEACTIVATED\tMIN Z\tMEAN Z\tMAX Z")
	for _, s := range steps {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			s.Step, s.Time, s.Active, s.Deactivated, s.MinZ, s.MeanZ, s.MaxZ)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STAGE\tSELECTED\tDEACTIVATED")
	for _, t := range stageTotals(stages) {
		fmt.Fprintf(w, "%s\t%d\t%d\n", t.Stage, t.Selected, t.Deactivated)
	}

	return w.Flush()
}

// stageTotals sums the stage rows over all steps, keeping the order in which
// stages first ran.
func stageTotals(stages []datarecording.StageEntry) []datarecording.StageEntry {
	var totals []datarecording.StageEntry
	index := make(map[string]int)

	for _, s := range stages {
		i, ok := index[s.Stage]
		if !ok {
			i = len(totals)
			index[s.Stage] = i
			totals = append(totals, datarecording.StageEntry{Stage: s.Stage})
		}

		totals[i].Selected += s.Selected
		totals[i].Deactivated += s.Deactivated
	}

	return totals
}
