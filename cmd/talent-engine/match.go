// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/talent-engine/internal/matching"
	"github.com/pdiddy/talent-engine/pkg/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates against a job description",
	Long: `Match analyzes a job description (from --job or stdin) into must-have
and nice-to-have skills, scores every stored candidate, and prints the best
--top-k. Interview evaluations add a trust boost. With
matching.llm_judgment enabled each candidate is also judged by the model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		description, err := readJob(cmd)
		if err != nil {
			return err
		}

		a, err := buildService(cmd.Context(), needs{model: true})
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.svc.Match(cmd.Context(), description, topK)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, m)
		}
		fmt.Fprintf(os.Stdout, "%s (%s)\n", m.JobTitle, m.JobLevel)
		fmt.Fprintf(os.Stdout, "Must have:    %s\n", strings.Join(m.RequiredSkills.MustHave, ", "))
		fmt.Fprintf(os.Stdout, "Nice to have: %s\n\n", strings.Join(m.RequiredSkills.NiceToHave, ", "))
		printResults(os.Stdout, m.RankedCandidates)
		fmt.Fprintf(os.Stdout, "\n%d of %d candidates\n", len(m.RankedCandidates), m.TotalCandidates)
		return nil
	},
}

func readJob(cmd *cobra.Command) (string, error) {
	if job, _ := cmd.Flags().GetString("job"); job != "" {
		return job, nil
	}
	file, _ := cmd.Flags().GetString("file")
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}
	return string(data), nil
}

func printResults(w io.Writer, results []types.MatchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching candidates.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-12s  %-24s  %-6s  %-6s  %-8s  %-6s  %s\n",
		"Rank", "ID", "Name", "Score", "Boost", "Category", "Conf", "Missing")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, r := range results {
		score := fmt.Sprintf("%.1f", r.MatchScore)
		if r.Unscored {
			score = "n/a"
		}
		fmt.Fprintf(w, "%-4d  %-12s  %-24s  %-6s  %-6.1f  %-8s  %-6s  %s\n",
			i+1, r.CandidateID, clip(r.Name, 24), score, r.TrustBoost, r.Recommendation, r.Confidence,
			clip(strings.Join(r.SkillMatch.MissingMustHave, ", "), 30))
	}
}

func init() {
	matchCmd.Flags().String("job", "", "job description text")
	matchCmd.Flags().StringP("file", "f", "", "file with the job description (default stdin)")
	matchCmd.Flags().IntP("top-k", "k", 5, fmt.Sprintf("number of candidates to return (1-%d)", matching.MaxTopK))
	matchCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(matchCmd)
}
