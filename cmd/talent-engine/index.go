// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/talent-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the retrieval index (rebuild, retrieve, export)",
	Long: `Index manages the retrieval backend configured under retrieval.backend.
The sqlite backend keeps a full-text index in <data_dir>/index/talent.db;
the lightrag backend forwards documents and queries to a LightRAG server.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-index every candidate and evaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.svc.RebuildIndex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Indexed %d documents\n", n)
		return nil
	},
}

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve <query>...",
	Short: "Query the retrieval index and print the context",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.svc.Retrieve(cmd.Context(), strings.Join(args, " "), types.RetrieveOptions{
			Mode: cfg.Retrieval.Mode,
			TopK: topK,
		})
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println("No results found.")
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local index to YAML or JSON",
	Long: `Export writes the documents of the sqlite index to
<data_dir>/index/export.yaml or export.json, optionally for one candidate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		candidateID, _ := cmd.Flags().GetString("candidate")

		a, err := buildService(cmd.Context(), needs{})
		if err != nil {
			return err
		}
		defer a.Close()

		if a.local == nil {
			return types.Validationf("export needs retrieval.backend sqlite, got %q", cfg.Retrieval.Backend)
		}

		var path string
		switch format {
		case "yaml":
			path, err = a.local.ExportYAML(cmd.Context(), candidateID)
		case "json":
			path, err = a.local.ExportJSON(cmd.Context(), candidateID)
		default:
			return types.Validationf("unsupported export format %q (use yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Exported to %s\n", path)
		return nil
	},
}

func init() {
	indexRetrieveCmd.Flags().IntP("top-k", "k", 0, "number of hits (default retrieval.top_k)")
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("candidate", "", "export only this candidate's documents")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)
	rootCmd.AddCommand(indexCmd)
}
