package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultSupplierURLs are merged in this order; earlier suppliers win ties.
var DefaultSupplierURLs = []string{
	"https://5f2be0b4ffc88500167b85a0.mockapi.io/suppliers/acme",
	"https://5f2be0b4ffc88500167b85a0.mockapi.io/suppliers/patagonia",
	"https://5f2be0b4ffc88500167b85a0.mockapi.io/suppliers/paperflies",
}

type Config struct {
	AppEnv           string
	LogLevel         string
	HTTPAddr         string
	MetricsAddr      string
	RequestTimeout   time.Duration
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	MySQLDSN         string // empty disables the fetch journal
	JournalRetention time.Duration
	SupplierURLs     []string
	SupplierTimeout  time.Duration
	SupplierRetries  int
	SupplierRPS      int
	ListCacheTTL     time.Duration
	HotelCacheTTL    time.Duration
	WarmDestinations []int64
	WarmWorkers      int
}

// Load reads the environment, after merging an optional .env file from the
// working directory (existing variables take precedence).
func Load() Config {
	_ = godotenv.Load()

	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		LogLevel:         env("LOG_LEVEL", "info"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      env("METRICS_ADDR", ""),
		RequestTimeout:   time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisAddr:        env("REDIS_ADDR", "localhost:6379"),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		MySQLDSN:         env("MYSQL_DSN", ""), // parseTime=true is forced when opening
		JournalRetention: time.Duration(atoi("JOURNAL_RETENTION_HOURS", 168)) * time.Hour,
		SupplierURLs:     list("SUPPLIER_URLS", DefaultSupplierURLs),
		SupplierTimeout:  time.Duration(atoi("SUPPLIER_TIMEOUT_MS", 5000)) * time.Millisecond,
		SupplierRetries:  atoi("SUPPLIER_RETRIES", 2),
		SupplierRPS:      atoi("SUPPLIER_RPS", 10),
		ListCacheTTL:     time.Duration(atoi("CACHE_LIST_TTL_SECONDS", 3600)) * time.Second,
		HotelCacheTTL:    time.Duration(atoi("CACHE_HOTEL_TTL_SECONDS", 10)) * time.Second,
		WarmDestinations: int64s("WARM_DESTINATIONS"),
		WarmWorkers:      atoi("WARM_WORKERS", 4),
	}
	if len(c.SupplierURLs) == 0 {
		log.Warn().Msg("SUPPLIER_URLS is empty; every query will fail as unavailable")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

// list splits a comma separated variable, keeping order.
func list(k string, def []string) []string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return append([]string(nil), def...)
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func int64s(k string) []int64 {
	var out []int64
	for _, p := range list(k, nil) {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Warn().Str("key", k).Str("value", p).Msg("skipping non-integer entry")
			continue
		}
		out = append(out, n)
	}
	return out
}
