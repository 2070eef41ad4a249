// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the talent-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/logger"
	"github.com/pdiddy/talent-engine/internal/secrets"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state resolved once in PersistentPreRunE.
var (
	loadedSecrets secrets.Secrets
	cfg           types.Config
	log           *zap.Logger
)

// rootCmd is the base command for the talent-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "talent-engine",
	Short: "Candidate profiles, interview evaluations and job matching",
	Long: `talent-engine keeps a local store of candidate profiles extracted from
résumés and interview notes, and ranks candidates against job descriptions.

Profiles and evaluations are extracted by a language model (Claude or Gemini).
Interview evidence outweighs résumé claims when scoring. An optional retrieval
index (local SQLite full-text or a LightRAG server) supplies supporting context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		log = l

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./talent-engine.yaml or ~/.config/talent-engine/talent-engine.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "root directory of the record store")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))

	setDefaults(viper.GetViper())
}

// setDefaults registers a default for every configuration key so that
// environment variables bind to nested keys during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "hr_data")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("conversion.backend", string(types.BackendNative))
	v.SetDefault("conversion.image", "markitdown:latest")
	v.SetDefault("extraction.provider", string(types.ProviderClaude))
	v.SetDefault("extraction.model", "")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.max_retries", 3)
	v.SetDefault("extraction.timeout", "120s")
	v.SetDefault("retrieval.backend", string(types.RetrievalSQLite))
	v.SetDefault("retrieval.url", "http://localhost:9621")
	v.SetDefault("retrieval.api_key", "")
	v.SetDefault("retrieval.mode", "mix")
	v.SetDefault("retrieval.top_k", 10)
	v.SetDefault("retrieval.timeout", "30s")
	v.SetDefault("matching.llm_judgment", false)
	v.SetDefault("matching.parallelism", 4)
	v.SetDefault("matching.candidate_timeout", "60s")
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("talent-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "talent-engine"))
		}
	}

	viper.SetEnvPrefix("TALENT_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitMessage turns an error into the line printed before exiting.
func exitMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return "not found: " + err.Error()
	case errors.Is(err, types.ErrValidation):
		return "invalid input: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, exitMessage(err))
		os.Exit(1)
	}
}
