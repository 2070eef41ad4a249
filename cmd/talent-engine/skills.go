package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List known skills or search candidates by skill",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every technical and soft skill in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		skills, err := a.svc.ListSkills(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, skills)
		}
		for _, s := range skills {
			fmt.Fprintln(os.Stdout, s)
		}
		return nil
	},
}

var skillsSearchCmd = &cobra.Command{
	Use:   "search <skill>",
	Short: "Find candidates holding a skill",
	Long: `Search lists candidates whose skills contain the given skill. Each hit
scores 70 plus 0.3 times its best interview score.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.svc.SearchBySkill(cmd.Context(), args[0], topK)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(os.Stdout, res)
		}
		fmt.Fprintf(os.Stdout, "Skill: %s\n\n", res.Skill)
		printResults(os.Stdout, res.Candidates)
		fmt.Fprintf(os.Stdout, "\n%d of %d candidates\n", len(res.Candidates), res.Total)
		return nil
	},
}

func init() {
	skillsListCmd.Flags().Bool("json", false, "output as JSON")
	skillsSearchCmd.Flags().IntP("top-k", "k", 10, "number of candidates to return")
	skillsSearchCmd.Flags().Bool("json", false, "output as JSON")

	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsSearchCmd)
	rootCmd.AddCommand(skillsCmd)
}
