package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datalens/adapters/jsonstore"
	"datalens/app/compare"
	"datalens/domain/model"
	"datalens/internal/config"
	"datalens/internal/container"
	"datalens/internal/testkit"
	"datalens/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownGrace = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "datalens",
		Short: "DataLens dataset analysis and model training tools",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newCompareCmd(),
		newHistoryCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the DataLens API server",
		Long: `Start the REST and streaming API with the configured storage backend.

Configuration is read from the environment (and .env if present).

Example: datalens serve --port 8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")

	return cmd
}

func newCompareCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare [model.json...]",
		Short: "Rank trained models against each other",
		Long: `Compare trained model records exported as JSON files.

Each file holds one trained model. The command ranks them by RMSE, MAE
and R2 and prints the aggregated ranking with recommendations.

Example: datalens compare models/a.json models/b.json --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "history [model-id]",
		Short: "Show the version lineage of a stored model",
		Long: `Walk the version chain of a model stored in a model directory.

Example: datalens history abc123 --dir data/models`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), dir, args[0])
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "data/models", "Model storage directory")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var out string
	var days int
	var regions int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic sales dataset",
		Long: `Write a deterministic synthetic sales CSV for demos and testing.

The dataset has a linear trend, weekend seasonality, correlated spend and
visitor columns and a small share of missing cells.

Example: datalens generate --days 90 --seed 7 --out demo.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(out, days, regions, seed)
		},
	}

	cmd.Flags().StringVar(&out, "out", "sales.csv", "Output CSV path")
	cmd.Flags().IntVar(&days, "days", 120, "Number of days to generate")
	cmd.Flags().IntVar(&regions, "regions", 4, "Number of regions")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")

	return cmd
}

func runServe(portOverride string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portOverride != "" {
		cfg.Server.Port = portOverride
	}

	c, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := c.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	if err := c.StartMaintenance(); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}

	server := ui.NewServer(cfg, ui.Deps{
		Datasets:  c.Datasets,
		Analysis:  c.Analysis,
		Training:  c.Training,
		Assistant: c.Assistant,
		Models:    c.ModelRepo,
		Settings:  c.SettingsRepo,
		Logger:    c.Logger,
	})
	return server.Start(":" + cfg.Server.Port)
}

func runCompare(paths []string, format string) error {
	models := make([]model.TrainedModel, 0, len(paths))
	for _, path := range paths {
		m, err := readModelFile(path)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	result, err := compare.Models(models)
	if err != nil {
		return err
	}

	if format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printComparison(models, result)
	return nil
}

func printComparison(models []model.TrainedModel, result *compare.Result) {
	fmt.Printf("=== MODEL COMPARISON (%d models) ===\n\n", len(models))
	fmt.Printf("%-4s %-24s %-14s %10s %10s %8s %8s\n",
		"RANK", "NAME", "TYPE", "RMSE", "MAE", "R2", "MAPE")
	for _, row := range result.Table {
		mape := "-"
		if row.MAPE != nil {
			mape = fmt.Sprintf("%.1f%%", *row.MAPE)
		}
		fmt.Printf("%-4d %-24s %-14s %10.4f %10.4f %8.4f %8s\n",
			row.RankOverall, clip(row.Name, 24), row.Type, row.RMSE, row.MAE, row.R2, mape)
	}

	fmt.Printf("\nBest overall: %s\n", result.BestOverall)
	if len(result.Recommendations) > 0 {
		fmt.Printf("\n=== RECOMMENDATIONS ===\n")
		for i, rec := range result.Recommendations {
			fmt.Printf("%d. %s\n", i+1, rec)
		}
	}
}

func runHistory(ctx context.Context, dir, modelID string) error {
	repo, err := jsonstore.NewModelRepository(dir)
	if err != nil {
		return fmt.Errorf("open model directory %s: %w", dir, err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		return err
	}

	models := make([]model.TrainedModel, 0, len(all))
	for _, m := range all {
		models = append(models, *m)
	}

	chain := compare.History(models, modelID)
	if len(chain) == 0 {
		return fmt.Errorf("model %s not found in %s", modelID, dir)
	}

	fmt.Printf("=== VERSION HISTORY: %s ===\n", modelID)
	for _, m := range chain {
		marker := " "
		if m.ID == modelID {
			marker = "*"
		}
		fmt.Printf("%s v%-3d %-14s %s  rmse=%.4f r2=%.4f  %s\n",
			marker, m.Version, m.Type, m.ID, m.Metrics.RMSE, m.Metrics.R2,
			m.TrainedAt.Time().Format("2006-01-02 15:04"))
		if m.Description != "" {
			fmt.Printf("       %s\n", m.Description)
		}
	}
	return nil
}

func runGenerate(out string, days, regions int, seed int64) error {
	cfg := testkit.DefaultSalesConfig()
	cfg.Days = days
	cfg.Regions = regionNames(regions)
	cfg.Seed = seed

	gen := testkit.NewSalesGenerator(cfg)

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := gen.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("Wrote %d rows to %s (days=%d regions=%d seed=%d)\n",
		days*len(cfg.Regions), out, days, len(cfg.Regions), seed)
	return nil
}

// regionNames maps a region count onto names, extending past the default
// four with numbered regions.
func regionNames(n int) []string {
	base := testkit.DefaultSalesConfig().Regions
	if n <= 0 {
		return base
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(base) {
			names = append(names, base[i])
			continue
		}
		names = append(names, fmt.Sprintf("region%d", i+1))
	}
	return names
}

func readModelFile(path string) (model.TrainedModel, error) {
	var m model.TrainedModel
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return m, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
