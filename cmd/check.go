package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/verity-group/claimcheck/internal/model"
)

var (
	checkFile     string
	checkTier     string
	checkLanguage string
	checkJSON     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Verify the claims in a single text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var text string
		switch {
		case checkFile != "":
			data, err := os.ReadFile(checkFile)
			if err != nil {
				return eris.Wrap(err, "read input file")
			}
			text = string(data)
		case len(args) == 1:
			text = args[0]
		default:
			return eris.New("provide text as an argument or with --file")
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("input text is empty")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Verify(ctx, text, checkLanguage, model.Tier(checkTier))
		if err != nil {
			return eris.Wrap(err, "verify")
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printReport(os.Stdout, result)
		return nil
	},
}

// printReport renders a plain-text verification report.
func printReport(w io.Writer, result *model.BatchResult) {
	fmt.Fprintf(w, "Verified %d claim(s) in %dms (language: %s)\n",
		result.ClaimsProcessed, result.ProcessingTimeMS, result.Language)

	for i, r := range result.Results {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, r.ClaimText)
		fmt.Fprintf(w, "   Verdict: %s (confidence %.0f)", r.Verdict.Label, r.Verdict.Confidence)
		if r.Cached {
			fmt.Fprint(w, " [cached]")
		}
		fmt.Fprintln(w)

		s := r.Verdict.Summary
		fmt.Fprintf(w, "   Evidence: %d total (%d supporting, %d refuting, %d neutral)\n",
			s.Total, s.Supporting, s.Refuting, s.Neutral)

		for _, line := range r.Verdict.Rationale {
			fmt.Fprintf(w, "   - %s\n", line)
		}
		for _, e := range r.Verdict.KeyEvidence {
			fmt.Fprintf(w, "   * [%s] %s (%s)\n", e.Stance, e.Title, e.SourceURL)
		}
		for _, lim := range r.Verdict.Limitations {
			fmt.Fprintf(w, "   ! %s\n", lim)
		}
	}
}

func init() {
	checkCmd.Flags().StringVar(&checkFile, "file", "", "read input text from a file")
	checkCmd.Flags().StringVar(&checkTier, "tier", string(model.TierFree), "plan tier (free|premium)")
	checkCmd.Flags().StringVar(&checkLanguage, "language", "en", "target language code")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(checkCmd)
}
