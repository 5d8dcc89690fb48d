package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/campusquest/api/internal/blob"
	"github.com/campusquest/api/internal/config"
	"github.com/campusquest/api/internal/database"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/journey"
	"github.com/campusquest/api/internal/migrations"
	"github.com/campusquest/api/internal/quest"
	"github.com/campusquest/api/internal/server"
	"github.com/campusquest/api/internal/users"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Redis ---
	rdb, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("connected to redis")

	// --- Blob storage ---
	uploads, uploadsDir, err := openUploads(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("configuring blob storage: %w", err)
	}

	// --- Engines ---
	docs, err := docstore.New(ctx, db)
	if err != nil {
		return fmt.Errorf("preparing docstore: %w", err)
	}
	us := users.New(docs)
	qs := quest.New(docs, us, uploads)
	je := journey.New(us)

	if err := server.SeedDemo(ctx, logger, docs, us); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		DB:         db,
		Redis:      rdb,
		Docs:       docs,
		Users:      us,
		Quests:     qs,
		Journeys:   je,
		UploadsDir: uploadsDir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// openUploads picks R2 when configured, local disk otherwise. The
// returned dir is empty for R2 since nothing is served from disk then.
func openUploads(ctx context.Context, logger *slog.Logger, cfg *config.Config) (blob.Uploader, string, error) {
	if cfg.R2AccountID != "" {
		s3, err := blob.NewS3(ctx, blob.S3Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			Bucket:      cfg.R2Bucket,
			PublicBase:  cfg.R2PublicBase,
		})
		if err != nil {
			return nil, "", err
		}
		logger.Info("uploads go to R2", "bucket", cfg.R2Bucket)
		return s3, "", nil
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, "", err
	}
	logger.Info("uploads go to local disk", "dir", cfg.UploadsDir)
	return blob.Local{Dir: cfg.UploadsDir}, cfg.UploadsDir, nil
}
