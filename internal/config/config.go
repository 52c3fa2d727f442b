package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses interval durations

	"github.com/joho/godotenv" // optional .env file loading for local development
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, durations for
// intervals.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	GeocodeAPIKey  string        // Google Maps Geocoding API key
	GeocodeTimeout time.Duration // per-call timeout for geocode requests
	EnrichInterval time.Duration // cadence of the coordinate backfill sweep
}

// Load reads configuration values from environment variables and returns
// a Config. A .env file is merged in first when present so local runs do
// not need to export everything by hand. Required variables are enforced
// by must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	_ = godotenv.Load() // missing .env is fine; real env always wins

	return Config{
		Env:            must("APP_ENV"),                              // environment (dev/test/prod)
		Port:           must("APP_PORT"),                             // port to bind the HTTP server
		DBUser:         must("DB_USER"),                              // database user
		DBPass:         os.Getenv("DB_PASS"),                         // database password (empty allowed)
		DBHost:         must("DB_HOST"),                              // database host
		DBPort:         must("DB_PORT"),                              // database port
		DBName:         must("DB_NAME"),                              // database name
		GeocodeAPIKey:  must("GEOCODE_API_KEY"),                      // geocoding provider key
		GeocodeTimeout: envDur("GEOCODE_TIMEOUT", 10*time.Second),    // bounded outbound call
		EnrichInterval: envDur("ENRICH_INTERVAL", 10*time.Second),    // backfill sweep cadence
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// Helper functions shared with redis.go, cache.go and ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
