package main

import (
	"context"
	"fmt"

	"alera/internal/bootstrap"
	"alera/internal/models"
	"alera/internal/storage"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [category...]",
	Short: "Load category indexes and print their shape",
	Long:  "Loads the local index for each category, verifying corpus and vector alignment, and prints size, dimension, metric and a few sample records.",
	RunE:  runInspect,
}

var inspectSample int

func init() {
	inspectCmd.Flags().IntVarP(&inspectSample, "sample", "n", 3, "Records to preview per category")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	categories := []models.Category{models.CategoryDraft, models.CategoryMidseason}
	if len(args) > 0 {
		categories = categories[:0]
		for _, a := range args {
			c, err := models.ParseCategory(a)
			if err != nil {
				return err
			}
			categories = append(categories, c)
		}
	}

	cfg, logger := setup()
	defer func() { _ = logger.Sync() }()
	if cfg.IndexBackend == storage.BackendPostgres {
		return fmt.Errorf("inspect reads local indexes; set ALERA_INDEX_BACKEND to file or sqlite")
	}

	ctx := context.Background()
	comp, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer comp.Close()

	out := cmd.OutOrStdout()
	for _, c := range categories {
		idx, err := comp.Local.Index(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to load %s index: %w", c, err)
		}
		renderIndex(out, c, idx, inspectSample)
	}
	return nil
}
