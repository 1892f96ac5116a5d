// Command authd runs the authentication service for the course platform
// API: login, token validation, brute-force lockout, and per-caller rate
// limiting, in front of an external identity database and a Redis counter
// store.
//
// Configuration is environment-driven (a local .env file is honored):
//
//	AUTHD_ADDR        listen address (default :8080)
//	JWT_SECRET        token signing secret, at least 32 bytes (required)
//	REDIS_ADDR        counter store address (default 127.0.0.1:6379)
//	PG_DSN            identity database DSN; empty switches to the seeded
//	                  in-memory directory (development only)
//	STORE_FAIL_POLICY "closed" (default) or "open"
//	SENTRY_DSN        optional error reporting
//	APP_ENV           environment tag for Sentry (default development)
//
// The -dev flag starts an embedded miniredis and the in-memory directory
// with demo accounts, requiring no external infrastructure.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/orbitlms/authgate"
	"github.com/orbitlms/authgate/directory"
	"github.com/orbitlms/authgate/internal/httpd"
	"github.com/orbitlms/authgate/internal/obs"
	authprom "github.com/orbitlms/authgate/metrics/export/prometheus"
	"github.com/orbitlms/authgate/password"
)

func main() {
	dev := flag.Bool("dev", false, "run with embedded miniredis and seeded in-memory directory")
	flag.Parse()

	_ = godotenv.Load()

	logger := obs.NewLogger()

	if err := obs.InitSentry(os.Getenv("SENTRY_DSN"), envOrDefault("APP_ENV", "development")); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}
	defer obs.FlushSentry()

	secret := os.Getenv("JWT_SECRET")
	if *dev && secret == "" {
		secret = "dev-only-signing-secret-0123456789abcdef"
	}
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	cfg := authgate.DefaultConfig()
	cfg.Token.Secret = []byte(secret)
	if envOrDefault("STORE_FAIL_POLICY", "closed") == "open" {
		cfg.Store.OnFailure = authgate.FailOpen
	}

	redisClient, closeRedis, err := openRedis(*dev)
	if err != nil {
		log.Fatalf("open redis: %v", err)
	}
	defer closeRedis()

	dir, closeDir, err := openDirectory(*dev, logger)
	if err != nil {
		log.Fatalf("open directory: %v", err)
	}
	defer closeDir()

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(redisClient).
		WithDirectory(dir).
		WithAuditSink(authgate.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	defer engine.Close()

	metrics := obs.NewHTTPMetrics()
	metrics.Register(authprom.NewExporter(engine))

	server := httpd.New(engine, logger, metrics)
	handler, stopThrottle := obs.Throttle(server.Handler(), 50, 25)
	defer stopThrottle()

	srv := &http.Server{
		Addr:              envOrDefault("AUTHD_ADDR", ":8080"),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting", map[string]any{"addr": srv.Addr, "dev": *dev})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func openRedis(dev bool) (redis.UniversalClient, func(), error) {
	if dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: envOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
	})
	return client, func() { _ = client.Close() }, nil
}

func openDirectory(dev bool, logger *obs.Logger) (authgate.IdentityDirectory, func(), error) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" || dev {
		logger.Info("using_memory_directory", nil)
		dir, err := seededMemoryDirectory()
		return dir, func() {}, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return directory.NewPostgres(db), func() { _ = db.Close() }, nil
}

// seededMemoryDirectory holds the demo accounts used without a database.
func seededMemoryDirectory() (*directory.Memory, error) {
	hasher, err := password.NewHasher(0)
	if err != nil {
		return nil, err
	}

	dir := directory.NewMemory()
	seed := []struct {
		id       int64
		username string
		email    string
		pass     string
		roles    []string
	}{
		{1, "admin", "admin@example.com", "admin-pass-1", []string{authgate.RoleAdmin}},
		{2, "teacher", "teacher@example.com", "teacher-pass-1", []string{authgate.RoleTeacher}},
		{3, "student", "student@example.com", "student-pass-1", []string{authgate.RoleStudent}},
	}
	for _, u := range seed {
		hash, err := hasher.Hash(u.pass)
		if err != nil {
			return nil, err
		}
		dir.Put(authgate.Identity{
			ID:           u.id,
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			Roles:        u.roles,
			Enabled:      true,
		})
	}
	return dir, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
