package helper

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Addr           string
	UpstreamURL    string
	DatabaseDSN    string
	RedisAddr      string
	PageSize       int
	UploadTTL      time.Duration
	RequestTimeout time.Duration
	WorkspaceIdle  time.Duration
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using process environment")
	}

	return Config{
		Addr:           GetEnv("PORTAL_ADDR", ":8080"),
		UpstreamURL:    GetEnv("UPSTREAM_BASE_URL", "http://marketplace-api:8081"),
		DatabaseDSN:    GetEnv("DATABASE_DSN", "postgres://portal:portal@db:5432/portal?sslmode=disable"),
		RedisAddr:      GetEnv("REDIS_ADDR", "redis:6379"),
		PageSize:       positiveInt(GetEnv("PAGE_SIZE", "10"), 10),
		UploadTTL:      time.Duration(positiveInt(GetEnv("UPLOAD_TTL_MINUTES", "15"), 15)) * time.Minute,
		RequestTimeout: time.Duration(positiveInt(GetEnv("REQUEST_TIMEOUT_SECONDS", "15"), 15)) * time.Second,
		WorkspaceIdle:  time.Duration(positiveInt(GetEnv("WORKSPACE_IDLE_MINUTES", "30"), 30)) * time.Minute,
	}
}

func positiveInt(s string, def int) int {
	n, err := cast.ToIntE(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
