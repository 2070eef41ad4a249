// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/pdiddy/talent-engine/pkg/types"
)

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidate profiles (ingest, list, show, update, delete)",
	Long: `Candidate manages the profiles in the record store. Profiles are created
by ingesting résumés and changed through patches or skill additions.`,
}

// --- ingest subcommand ---

var candidateIngestCmd = &cobra.Command{
	Use:   "ingest <cv-file>...",
	Short: "Convert résumés and extract candidate profiles",
	Long: `Ingest converts each PDF, DOCX or DOC résumé to text, extracts a
candidate profile with the configured language model, and stores it. The
converted text is cached under cv_cache/. Files are processed in order;
a failure stops the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCandidateIngest,
}

func runCandidateIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildService(ctx, needs{model: true, converter: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range args {
		c, meta, err := a.svc.IngestCV(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s  %s  (%s, %d chars)\n", c.ID, c.PersonalInfo.Name, meta.OriginalFile, meta.ContentLength)
	}
	return nil
}

// --- list subcommand ---

var candidateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored candidates",
	RunE:  runCandidateList,
}

func runCandidateList(cmd *cobra.Command, args []string) error {
	a, err := buildService(cmd.Context(), needs{})
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.svc.List(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(os.Stdout, list)
	}
	if len(list) == 0 {
		fmt.Println("No candidates.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-28s  %-6s  %-5s  %s\n",
		"ID", "Name", "Email", "Skills", "Exp", "Evaluated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, c := range list {
		fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-28s  %-6d  %-5d  %t\n",
			c.ID, clip(c.Name, 24), clip(c.Email, 28), c.SkillsCount, c.ExperienceCount, c.HasEvaluation)
	}
	fmt.Fprintf(os.Stdout, "\n%d candidates\n", len(list))
	return nil
}

// --- show subcommand ---

var candidateShowCmd = &cobra.Command{
	Use:   "show <candidate-id>",
	Short: "Print a candidate profile with its evaluations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.svc.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, detail)
		}
		return printYAML(os.Stdout, detail)
	},
}

// --- update subcommand ---

var candidateUpdateCmd = &cobra.Command{
	Use:   "update <candidate-id>",
	Short: "Apply a YAML or JSON patch to a candidate profile",
	Long: `Update deep-merges a patch file into the profile. Objects merge key by
key; lists are replaced unless --merge-lists is set, in which case new
items are appended without duplicates. Fields the service owns (id,
evaluations, timestamps) are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		mergeLists, _ := cmd.Flags().GetBool("merge-lists")

		patch, err := readPatch(file)
		if err != nil {
			return err
		}

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.svc.Update(cmd.Context(), args[0], patch, mergeLists)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Updated %s (%s)\n", c.ID, c.PersonalInfo.Name)
		return nil
	},
}

// --- add-skills subcommand ---

var candidateAddSkillsCmd = &cobra.Command{
	Use:   "add-skills <candidate-id>",
	Short: "Add technical or soft skills to a candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		technical, _ := cmd.Flags().GetStringSlice("technical")
		soft, _ := cmd.Flags().GetStringSlice("soft")

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.svc.AddSkills(cmd.Context(), args[0], splitList(technical), splitList(soft))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Technical: %s\nSoft: %s\n",
			strings.Join(c.Skills.Technical, ", "), strings.Join(c.Skills.Soft, ", "))
		return nil
	},
}

// --- delete subcommand ---

const (
	confirmDelete = "Delete"
	confirmKeep   = "Keep"
)

var candidateDeleteCmd = &cobra.Command{
	Use:   "delete <candidate-id>",
	Short: "Delete a candidate and all of its evaluations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		if !yes {
			ok, err := confirm(cmd.Context(), a.svc, args[0], promptDelete)
			if err != nil || !ok {
				return err
			}
		}

		deleted, err := a.svc.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(os.Stdout, "Candidate %s does not exist.\n", args[0])
			return nil
		}
		fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

// detailGetter loads a candidate for the delete confirmation.
type detailGetter interface {
	Get(ctx context.Context, candidateID string) (*types.CandidateDetail, error)
}

// confirm asks before a destructive delete. An unknown candidate skips the
// prompt so the delete reports it; any other lookup error aborts.
func confirm(ctx context.Context, svc detailGetter, id string, ask func(label string) (bool, error)) (bool, error) {
	detail, err := svc.Get(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := ask(fmt.Sprintf("Delete %s (%s) and %d evaluation(s)?", id, detail.PersonalInfo.Name, len(detail.EvaluationDetails)))
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Println("Aborted.")
	}
	return ok, nil
}

// promptDelete shows a Keep/Delete selection on the terminal.
func promptDelete(label string) (bool, error) {
	prompt := promptui.Select{
		Label: label,
		Items: []string{confirmKeep, confirmDelete},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return choice == confirmDelete, nil
}

func init() {
	candidateListCmd.Flags().Bool("json", false, "output as JSON")
	candidateShowCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	candidateUpdateCmd.Flags().StringP("file", "f", "-", "patch file in YAML or JSON (- for stdin)")
	candidateUpdateCmd.Flags().Bool("merge-lists", false, "append to lists instead of replacing them")

	candidateAddSkillsCmd.Flags().StringSlice("technical", nil, "technical skills to add (comma-separated)")
	candidateAddSkillsCmd.Flags().StringSlice("soft", nil, "soft skills to add (comma-separated)")

	candidateDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	candidateCmd.AddCommand(candidateIngestCmd)
	candidateCmd.AddCommand(candidateListCmd)
	candidateCmd.AddCommand(candidateShowCmd)
	candidateCmd.AddCommand(candidateUpdateCmd)
	candidateCmd.AddCommand(candidateAddSkillsCmd)
	candidateCmd.AddCommand(candidateDeleteCmd)
	rootCmd.AddCommand(candidateCmd)
}
