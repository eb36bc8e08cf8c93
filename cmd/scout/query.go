package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"alera/internal/bootstrap"
	"alera/internal/models"
	"alera/internal/scout"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [request]",
	Short: "Recommend players for a scouting request",
	Long:  "Runs one scouting request through retrieval, filtering and the LLM, then prints the grounded recommendation with dashboard links.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var (
	queryCategory string
	queryRange    string
	queryMode     string
	queryTopK     int
	queryJSON     bool
)

func init() {
	queryCmd.Flags().StringVarP(&queryCategory, "category", "c", "draft", "Player category (draft or midseason)")
	queryCmd.Flags().StringVarP(&queryRange, "range", "r", "All", "Draft range filter, draft category only")
	queryCmd.Flags().StringVarP(&queryMode, "mode", "m", "quick", "Recommendation mode (quick or detailed)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "Candidates to retrieve before filtering (0 uses ALERA_TOP_K)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the full result as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	category, err := models.ParseCategory(queryCategory)
	if err != nil {
		return err
	}
	mode, err := models.ParseMode(queryMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger := setup()
	defer func() { _ = logger.Sync() }()

	comp, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer comp.Close()
	runner, closeRunner, err := comp.Runner(logger)
	if err != nil {
		return fmt.Errorf("failed to build runner: %w", err)
	}
	defer closeRunner()

	res, err := runner.Run(ctx, scout.Request{
		Query:      strings.Join(args, " "),
		Category:   category,
		DraftRange: queryRange,
		Mode:       mode,
		TopK:       queryTopK,
	})
	if err != nil {
		return err
	}

	if queryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderResult(cmd.OutOrStdout(), res)
	return nil
}
