package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reviewharvest/internal/adapters/fetch"
	"reviewharvest/internal/adapters/observability"
	redisad "reviewharvest/internal/adapters/redis"
	"reviewharvest/internal/app"
	"reviewharvest/internal/domain"
	"reviewharvest/internal/shared"
	mysqlrepo "reviewharvest/internal/storage/mysql"
)

// fetch downloads the FETCH_URLS listing pages one by one with a courtesy
// delay, then runs the same extract/merge/write path as merge.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	if len(cfg.FetchURLs) == 0 {
		log.Fatal().Msg("FETCH_URLS is empty; nothing to fetch")
	}
	log.Info().
		Strs("urls", cfg.FetchURLs).
		Dur("delay", cfg.FetchDelay).
		Msg("fetch starting")

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	savePagesDir := ""
	if cfg.SavePages {
		savePagesDir = cfg.PagesDir
	}

	svc := app.NewHarvestService(fetch.New(cfg.FetchDelay), cache, openArchive(cfg), cfg.Workers)
	sum, err := svc.Run(ctx, app.Job{
		URLs:         cfg.FetchURLs,
		CacheTTLSec:  int(cfg.CacheTTL.Seconds()),
		SavePagesDir: savePagesDir,
		Out:          app.Outputs{JSONPath: cfg.OutJSON, CSVPath: cfg.OutCSV, XLSXPath: cfg.OutXLSX},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}

	log.Info().
		Str("json", cfg.OutJSON).
		Str("csv", cfg.OutCSV).
		Int("reviews", sum.Total).
		Msg("fetch completed")
}

// openArchive connects the MySQL sink when MYSQL_DSN is set; a harvest
// run works without it.
func openArchive(cfg shared.Config) domain.ReviewArchive {
	if cfg.MySQLDSN == "" {
		return nil
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
