// Command authkitd serves the authentication HTTP API backed by Redis.
//
// Configuration is read from the environment (a local .env file is loaded
// when present):
//
//	AUTH_ACCESS_SECRET   access-token signing secret (required)
//	AUTH_REFRESH_SECRET  refresh-token signing secret (required, must differ)
//	AUTH_ACCESS_TTL      access-token lifetime in seconds (default 3600)
//	AUTH_REFRESH_TTL     refresh-token lifetime in seconds (default 604800)
//	AUTH_PRODUCTION      "true" suppresses error detail in responses
//	REDIS_ADDR           Redis address (default localhost:6379)
//	REDIS_PREFIX         Redis key prefix (default ak)
//	HTTP_ADDR            listen address (default :8080)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	authkit "github.com/Hydrex75/authkit"
	"github.com/Hydrex75/authkit/httpapi"
	promexport "github.com/Hydrex75/authkit/metrics/export/prometheus"
	"github.com/Hydrex75/authkit/store"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	accessSecret := os.Getenv("AUTH_ACCESS_SECRET")
	refreshSecret := os.Getenv("AUTH_REFRESH_SECRET")
	if accessSecret == "" || refreshSecret == "" {
		log.Fatal("authkitd: AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET are required")
	}

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessSecret = []byte(accessSecret)
	cfg.Token.RefreshSecret = []byte(refreshSecret)
	cfg.Token.AccessTTLSeconds = envInt("AUTH_ACCESS_TTL", cfg.Token.AccessTTLSeconds)
	cfg.Token.RefreshTTLSeconds = envInt("AUTH_REFRESH_TTL", cfg.Token.RefreshTTLSeconds)
	cfg.Security.ProductionMode = os.Getenv("AUTH_PRODUCTION") == "true"
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Audit.Enabled = true

	rdb := redis.NewClient(&redis.Options{Addr: envStr("REDIS_ADDR", "localhost:6379")})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("authkitd: redis ping failed: %v", err)
	}

	credStore := store.NewRedis(rdb, envStr("REDIS_PREFIX", "ak"))

	svc, err := authkit.New().
		WithConfig(cfg).
		WithStore(credStore).
		WithAuditSink(authkit.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Fatalf("authkitd: service build failed: %v", err)
	}
	defer svc.Close()

	srv := httpapi.NewServer(svc, httpapi.Config{
		Metrics: promexport.NewPrometheusExporter(svc).Handler(),
	})

	addr := envStr("HTTP_ADDR", ":8080")
	log.Printf("authkitd: listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Router()))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("authkitd: %s must be an integer, got %q", key, v)
	}
	return n
}
