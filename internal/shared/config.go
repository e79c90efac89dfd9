package shared

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	InputFile  string
	InputFiles []string
	PagesDir   string

	FetchURLs  []string
	FetchDelay time.Duration
	SavePages  bool

	Workers int

	OutJSON   string
	OutCSV    string
	OutXLSX   string
	ParseJSON string
	ParseCSV  string

	CacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		InputFile:   env("INPUT_FILE", "listing.html"),
		InputFiles:  splitList(env("INPUT_FILES", "listing.html,listing_10.html,listing_20.html")),
		PagesDir:    env("PAGES_DIR", "pages"),
		FetchURLs:   splitList(env("FETCH_URLS", "")),
		FetchDelay:  time.Duration(atoi("FETCH_DELAY_MS", 2000)) * time.Millisecond,
		SavePages:   env("SAVE_PAGES", "") == "true",
		Workers:     atoi("PARSE_WORKERS", 4),
		OutJSON:     env("OUT_JSON", "data.json"),
		OutCSV:      env("OUT_CSV", "data.csv"),
		OutXLSX:     env("OUT_XLSX", ""),
		ParseJSON:   env("PARSE_OUT_JSON", "parsed.json"),
		ParseCSV:    env("PARSE_OUT_CSV", "parsed.csv"),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
