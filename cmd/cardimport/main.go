// Command cardimport converts a CSV card export into a YAML set file. Only
// creatures whose rules text is keywords only are kept; everything else needs a
// card script written by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/registry"
)

var (
	csvPath = flag.String("csv", "data/cards_export.csv", "path to the CSV card export")
	outPath = flag.String("out", "sets/imported.yaml", "path of the YAML set file to write")
	setCode = flag.String("set", "IMP", "set code of the generated set")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("Card import failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	start := time.Now()
	file, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	cards, stats, err := registry.ParseCardExport(file)
	if err != nil {
		return err
	}
	data, err := registry.EncodeSet(*setCode, cards)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return fmt.Errorf("write set: %w", err)
	}

	// Load the result back so a broken file never ships.
	if _, err := registry.New(logger, &registry.File{Path: *outPath}); err != nil {
		return fmt.Errorf("verify set: %w", err)
	}

	logger.Info("Card import complete",
		zap.String("csv", *csvPath),
		zap.String("out", *outPath),
		zap.Int("rows", stats.Rows),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped),
		zap.Int("malformed", stats.Malformed),
		zap.Duration("took", time.Since(start)))
	return nil
}
