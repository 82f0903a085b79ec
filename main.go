package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-portal/apiclient"
	"marketplace-portal/helper"
	"marketplace-portal/repository"
	"marketplace-portal/uploads"
	"marketplace-portal/workspace"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var (
	db  *sql.DB
	rdb *redis.Client
)

func main() {
	var err error

	// === Load ENV ===
	cfg := helper.LoadConfig()

	// === Setup Postgres ===
	db, err = sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal("failed to prepare schema:", err)
	}

	// === Setup Redis ===
	rdb = redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	log.Println("connected to Redis:", cfg.RedisAddr)

	// === Determine run mode ===
	mode := "app"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "worker":
		log.Println("Running in WORKER ONLY mode...")
		runWorker(context.Background())
		return

	case "app":
		log.Println("Running in HTTP SERVER mode only...")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		runHTTPServerWithShutdown(ctx, cancel, cfg)

	case "all":
		log.Println("Running in FULL mode (server + worker)...")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runWorker(ctx)
		runHTTPServerWithShutdown(ctx, cancel, cfg)

	default:
		log.Fatalf("Unknown mode: %s (expected 'app', 'worker', or 'all')", mode)
	}
}

func runHTTPServerWithShutdown(ctx context.Context, cancel context.CancelFunc, cfg helper.Config) {
	api := apiclient.New(cfg.UpstreamURL, apiclient.WithTimeout(cfg.RequestTimeout))
	p := newPortal(cfg, api, db, rdb)
	go runSweeper(ctx, p.sweepers(), cfg.WorkspaceIdle)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: setupRouter(p),
	}

	go func() {
		log.Println("HTTP server running on", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error:", err)
		}
	}()

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	log.Println("shutting down gracefully...")

	cancel()
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	srv.Shutdown(ctxTimeout)
	log.Println("server and worker stopped.")
}

// runSweeper drops the per-user state of users that went idle.
func runSweeper(ctx context.Context, sweepers []workspace.Sweeper, idle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range sweepers {
				s.Sweep(idle)
			}
		}
	}
}

// runWorker listens for expired upload keys: an upload whose key expires
// before its form was saved is marked orphaned.
func runWorker(ctx context.Context) {
	if err := rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		log.Println("[worker] could not enable keyspace events, relying on server config:", err)
	}

	pubsub := rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Println("[worker] listening to Redis expired events...")

	for {
		select {
		case <-ctx.Done():
			log.Println("[worker] stopped.")
			return
		default:
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Println("[worker] pubsub receive error:", err)
				time.Sleep(time.Second)
				continue
			}

			id, ok := uploads.ParseKey(msg.Payload)
			if !ok {
				continue
			}
			orphaned, err := repository.MarkUploadOrphaned(db, id)
			if err != nil {
				log.Printf("[worker] failed to mark upload %d orphaned: %v\n", id, err)
				continue
			}
			if !orphaned {
				log.Printf("[worker] upload %d expired after being attached, nothing to do\n", id)
			}
		}
	}
}
