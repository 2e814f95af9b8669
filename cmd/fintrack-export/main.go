// Command fintrack-export writes the stored transactions to a dated CSV
// file without starting the server.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/filter"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	var criteria filter.Criteria
	var from, to string
	flag.StringVar(&criteria.Search, "search", "", "only rows whose description or category contains this text")
	flag.StringVar(&criteria.Type, "type", filter.All, "income, expense or all")
	flag.StringVar(&criteria.Category, "category", "", "exact category; empty for every category")
	flag.StringVar(&criteria.Method, "method", filter.All, "cash, bank, mobile or all")
	flag.StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	flag.StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	dir := flag.String("dir", cfg.ExportDir, "directory to write the CSV file into")
	flag.Parse()

	var err error
	if criteria.From, err = parseDay(from); err != nil {
		logger.Error("Invalid -from date", log.FieldError, err)
		os.Exit(2)
	}
	if criteria.To, err = parseDay(to); err != nil {
		logger.Error("Invalid -to date", log.FieldError, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	store := cli.InitBackend(ctx, logger, cfg)
	if store.Cleanup != nil {
		defer store.Cleanup()
	}

	transactions, err := ledger.Open(ctx, store.KV, ledger.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open transaction ledger", log.FieldError, err)
		os.Exit(1)
	}

	txs := filter.Apply(transactions.List(), criteria)
	path := filepath.Join(*dir, export.Filename(time.Now()))
	if err := writeFile(path, txs); err != nil {
		logger.Error("Export failed", log.FieldFile, path, log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Transactions exported", log.FieldOperation, log.OpExport, log.FieldFile, path, log.FieldCount, len(txs))
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(export.DateLayout, s, time.Local)
}

func writeFile(path string, txs []core.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, txs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
