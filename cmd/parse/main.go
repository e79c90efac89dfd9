package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reviewharvest/internal/adapters/observability"
	"reviewharvest/internal/app"
	"reviewharvest/internal/shared"
)

// parse reads one saved listing page and writes parsed.json / parsed.csv.
// The input comes from the first argument, else INPUT_FILE.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	input := cfg.InputFile
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	log.Info().Str("input", input).Msg("parse starting")

	svc := app.NewHarvestService(nil, nil, nil, cfg.Workers)
	sum, err := svc.Run(ctx, app.Job{
		Files: []string{input},
		Out:   app.Outputs{JSONPath: cfg.ParseJSON, CSVPath: cfg.ParseCSV},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("parse failed")
	}

	log.Info().
		Str("json", cfg.ParseJSON).
		Str("csv", cfg.ParseCSV).
		Int("reviews", sum.Total).
		Msg("parse completed")
	if sum.Total < 5 {
		log.Warn().Int("reviews", sum.Total).Msg("fewer than 5 reviews; the page layout may have changed")
	}
}
