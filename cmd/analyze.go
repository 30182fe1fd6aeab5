package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/session"
)

const (
	outputText = "text"
	outputJSON = "json"

	descriptionNotFound = "Description not found."
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the stored resume against every stored job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		output, _ := cmd.Flags().GetString("output")
		full, _ := cmd.Flags().GetBool("full")
		if output != outputText && output != outputJSON {
			return fmt.Errorf("unsupported output format: %s", output)
		}

		analyzer, err := newAnalyzer(ctx, e.config.AI, e.logger)
		if err != nil {
			return err
		}

		controller := e.newController(ctx, analyzer)
		defer controller.Discard()

		if err := controller.Submit(ctx); err != nil {
			if matching.IsValidationError(err) {
				return err
			}
			// Details are already logged by the analyzer.
			return errors.New(matching.ErrAnalysisFailed.Error())
		}

		results := controller.Snapshot().Results
		if output == outputJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		renderResults(cmd.OutOrStdout(), results, controller, full)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	analyzeCmd.Flags().Bool("full", false, "print the full job description under each result")
}

type jobLookup interface {
	JobByID(id string) (matching.JobDescription, bool)
}

var _ jobLookup = (*session.Controller)(nil)

// renderResults prints results in the order given, which is best match first.
func renderResults(w io.Writer, results []matching.MatchResult, jobs jobLookup, full bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%d. %s: %.0f%% match (%s)\n", i+1, r.JobTitle, r.MatchPercentage, matching.ScoreBand(r.MatchPercentage))
		if r.Summary != "" {
			fmt.Fprintf(w, "   %s\n", r.Summary)
		}

		if len(r.MatchingSkills) > 0 {
			fmt.Fprintln(w, "   Matching skills:")
			for _, skill := range r.MatchingSkills {
				fmt.Fprintf(w, "     + %s\n", skill)
			}
		}

		if len(r.MissingSkills) > 0 {
			fmt.Fprintln(w, "   Missing skills:")
			for _, m := range r.MissingSkills {
				fmt.Fprintf(w, "     - %s: %s\n", m.Skill, m.Context)
			}
		}

		if full {
			description := descriptionNotFound
			if job, ok := jobs.JobByID(r.JobID); ok {
				description = job.Description
			}
			fmt.Fprintln(w, "   Full job description:")
			for _, line := range strings.Split(description, "\n") {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
	}
}
