/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the work tracking server: configuration,
  store selection, dependency injection and graceful shutdown.

CONFIGURATION:
  Flags, with environment variables (optionally from a .env file) as
  defaults:

  -port     / PORT          HTTP port (default 5000)
  -data     / DATA_DIR      data directory (default ./data)
  -backend  / BACKEND       "jsonfile" or "sqlite" (default jsonfile)
  -auth     / REQUIRE_AUTH  gate /works behind bearer tokens
              JWT_SECRET    token signing secret; auth endpoints are
                            only mounted when it is set

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Open the partition store for the chosen backend
  3. Open the users database and build the auth service (if secret set)
  4. Configure router, start server
  5. On SIGINT/SIGTERM: drain for up to 30s, then exit

EXAMPLES:
  ./server -data=/mnt/shared/works
  ./server -backend=sqlite -port=3000
  JWT_SECRET=s3cret ./server -auth

SEE ALSO:
  - api/server.go: router configuration
  - store/jsonfile, store/sqlite: backends
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/worklog-engine/api"
	"github.com/warp/worklog-engine/auth"
	"github.com/warp/worklog-engine/store/jsonfile"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
)

func main() {
	// .env values become defaults; flags win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 5000), "HTTP server port")
	dataDir := flag.String("data", envStr("DATA_DIR", "./data"), "Data directory")
	backend := flag.String("backend", envStr("BACKEND", "jsonfile"), "Storage backend: jsonfile or sqlite")
	requireAuth := flag.Bool("auth", os.Getenv("REQUIRE_AUTH") == "true", "Require bearer tokens on /works")
	flag.Parse()

	store, closeStore, err := openStore(*backend, *dataDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	handler := api.NewHandler(store)
	handler.RequireAuth = *requireAuth

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		users, err := auth.OpenSQLiteUsers(filepath.Join(*dataDir, "users.db"))
		if err != nil {
			log.Fatalf("Failed to open users database: %v", err)
		}
		defer users.Close()
		handler.Auth = auth.NewService(users, []byte(secret))
	} else if *requireAuth {
		log.Fatal("-auth requires JWT_SECRET to be set")
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (backend=%s, data=%s)", *port, *backend, *dataDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// openStore builds the partition store for the chosen backend.
func openStore(backend, dataDir string) (worklog.Store, func(), error) {
	switch backend {
	case "jsonfile":
		s, err := jsonfile.New(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, err
		}
		s, err := sqlite.New(filepath.Join(dataDir, "works.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want jsonfile or sqlite)", backend)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
