package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"shippulse/internal/config"
	"shippulse/internal/dataprocessing"
	"shippulse/internal/infrastructure"
)

func main() {
	in := flag.String("in", "", "input orders file (.csv or .xlsx)")
	out := flag.String("out", "", "output CSV path (defaults to data/processed/processed_orders.csv relative to executable)")
	threshold := flag.Int("late-threshold", dataprocessing.DefaultLateThresholdDays, "days of total fulfillment time beyond which an order counts as late")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: processor -in orders.csv [-out processed.csv] [-late-threshold 7]")
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	dst := *out
	if dst == "" {
		paths, err := config.GetPaths()
		if err != nil {
			logger.Error("failed to resolve paths", "error", err)
			os.Exit(1)
		}
		if err := paths.EnsureDirectories(); err != nil {
			logger.Error("failed to create directories", "error", err)
			os.Exit(1)
		}
		dst = paths.ProcessedOrdersCSV
	}

	pipeline := dataprocessing.NewPipeline(logger, dataprocessing.PipelineConfig{
		LateThresholdDays: *threshold,
	})

	_, stats, err := pipeline.Prepare(context.Background(), *in, dst)
	if err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}

	logger.Info("processing complete",
		slog.String("output", dst),
		slog.Int("rows", stats.Rows),
		slog.Int("warnings", stats.Warnings),
		slog.Int("imputed_shipping_cost", stats.ImputedShippingCost),
		slog.Int("imputed_order_value", stats.ImputedOrderValue))
}
