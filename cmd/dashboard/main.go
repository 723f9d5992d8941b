package main

import (
	"context"
	"flag"
	"fmt"
	"fraud_screener/internal/config"
	"fraud_screener/internal/dashboard"
	"fraud_screener/internal/ingest"
	"fraud_screener/internal/processor"
	"fraud_screener/pkg/validator"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [-json] [file.csv|file.xlsx]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*configPath, *asJSON, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, asJSON bool, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.Batch.SamplePath
	}

	// stdout carries the report only.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rules, err := processor.ConfiguredRuleSet(cfg.Rules.Disabled)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(validator.NewTransactionValidator(), logger)
	txs, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	evaluator := processor.NewEvaluator(rules, processor.WithLogger(logger))
	results, err := processor.NewBatchProcessor(evaluator, cfg.Batch.Workers, logger).EvaluateAll(ctx, txs)
	if err != nil {
		return err
	}

	summary := dashboard.Summarize(results)
	if asJSON {
		return dashboard.WriteJSON(os.Stdout, summary)
	}
	return dashboard.WriteText(os.Stdout, summary)
}
