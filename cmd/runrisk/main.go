// runrisk scores a vitals JSON document and prints the risk report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/majinstudio/labvitals/internal/common"
	"github.com/majinstudio/labvitals/internal/risk"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <vitals.json>\n", os.Args[0])
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read vitals file", "error", err)
		os.Exit(1)
	}

	vitals, err := risk.ValidateVitalsJSON(data)
	if err != nil {
		logger.Error("invalid vitals document", "error", err)
		os.Exit(1)
	}

	models := risk.NewModelCache(cfg.Models.Dir, cfg.Models.OrtLib, logger)
	defer models.Close()
	scorer := risk.NewScorer(models, logger)

	report := scorer.Score(context.Background(), vitals)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}
}
