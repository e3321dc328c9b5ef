package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/creativity-bench/internal/judge"
)

func newSummarizeCmd() *cobra.Command {
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "summarize <evaluation-log>",
		Short: "Aggregate the scores of an evaluation log",
		Long: `Read an evaluation log written by 'run' and report mean originality, feasibility
and value, hallucination counts, high-quality answers and the variance of the per-question
originality means. The summary is written next to the log as <log>_summary.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile := args[0]

			if _, err := os.Stat(logFile); os.IsNotExist(err) {
				return fmt.Errorf("evaluation log not found: %s", logFile)
			}

			s, err := judge.SummarizeFile(logFile)
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Evaluation log: %s\n", logFile)
			fmt.Fprintf(out, "  Lines: %d (parsed %d, unparsed %d)\n", s.Lines, s.Parsed, s.Unparsed)
			fmt.Fprintf(out, "  Questions: %d\n", s.Questions)
			fmt.Fprintf(out, "  Mean originality: %s\n", formatMean(s.MeanOriginality))
			fmt.Fprintf(out, "  Mean feasibility: %s\n", formatMean(s.MeanFeasibility))
			fmt.Fprintf(out, "  Mean value: %s\n", formatMean(s.MeanValue))
			fmt.Fprintf(out, "  Originality variance: %s\n", formatMean(s.OriginalityVariance))
			fmt.Fprintf(out, "  Hallucinations: %d yes, %d no\n", s.HallucinationYes, s.HallucinationNo)
			fmt.Fprintf(out, "  Intelligent hallucinations: %d\n", s.IntelligentHallucinations)

			if noWrite {
				return nil
			}
			summaryFile, err := judge.WriteSummaryFile(s, logFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSummary written to: %s\n", summaryFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWrite, "no-write", false, "Print the summary without writing the JSON file")

	return cmd
}

func formatMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
