package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/observability"
	"github.com/jonathan/talenttrek/internal/seed"
	"github.com/jonathan/talenttrek/internal/skills"
)

var (
	seedFile        string
	seedClear       bool
	seedDatabaseURL string
	seedVerbose     bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample job postings from a JSON file",
	Long:  "Validate a JSON array of job postings against the postings schema and insert it. Skills are extracted from each posting's requirements and description.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to the JSON postings file (required)")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "Delete every existing posting and application first")
	seedCmd.Flags().StringVar(&seedDatabaseURL, "database-url", "", "PostgreSQL URL (default $DATABASE_URL)")
	seedCmd.Flags().BoolVarP(&seedVerbose, "verbose", "v", false, "Print the inserted postings and their skills")

	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	// Validate before touching the database.
	inputs, err := seed.Parse(data, skills.NewExtractor(nil))
	if err != nil {
		return err
	}

	url, err := databaseURL(seedDatabaseURL)
	if err != nil {
		return err
	}

	log, err := newLogger(false, false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := db.Connect(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := seed.New(store, log).Run(cmd.Context(), inputs, seedClear)
	if err != nil {
		return err
	}

	log.Info("seed complete",
		zap.String("file", seedFile),
		zap.Int("inserted", len(res.Inserted)),
		zap.Int64("deleted", res.Deleted),
	)
	if seedVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSeededPostings(res.Inserted, res.Deleted)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d postings (deleted %d)\n", len(res.Inserted), res.Deleted)
	return nil
}
