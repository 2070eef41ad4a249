package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <candidate-id>",
	Short: "Record an interview evaluation from free-text notes",
	Long: `Evaluate extracts a structured evaluation from interview notes (read from
--notes, --file, or stdin) and attaches it to the candidate. Interview
evidence carries 2.5 times the weight of résumé claims when matching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := readNotes(cmd)
		if err != nil {
			return err
		}

		a, err := buildService(cmd.Context(), needs{model: true})
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.svc.AddEvaluation(cmd.Context(), args[0], notes)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, e)
		}
		fmt.Fprintf(os.Stdout, "Evaluation %s for %s\n", e.ID, e.CandidateID)
		fmt.Fprintf(os.Stdout, "  Recommendation: %s\n", e.OverallRecommendation)
		fmt.Fprintf(os.Stdout, "  Weighted score: %.1f\n", e.WeightedScore)
		if len(e.KeyConcerns) > 0 {
			fmt.Fprintf(os.Stdout, "  Concerns:       %s\n", strings.Join(e.KeyConcerns, "; "))
		}
		return nil
	},
}

func readNotes(cmd *cobra.Command) (string, error) {
	if notes, _ := cmd.Flags().GetString("notes"); notes != "" {
		return notes, nil
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
		return "", fmt.Errorf("reading notes: %w", err)
	}
	return string(data), nil
}

func init() {
	evaluateCmd.Flags().String("notes", "", "interview notes text")
	evaluateCmd.Flags().StringP("file", "f", "", "file with interview notes (default stdin)")
	evaluateCmd.Flags().Bool("json", false, "output the evaluation as JSON")

	rootCmd.AddCommand(evaluateCmd)
}
