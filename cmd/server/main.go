package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/conf"
	"github.com/programme-lv/competitions/execsrvc"
	"github.com/programme-lv/competitions/http"
	"github.com/programme-lv/competitions/memrepo"
	"github.com/programme-lv/competitions/migrsrvc"
	"github.com/programme-lv/competitions/pgrepo"
	"github.com/programme-lv/competitions/results"
	"github.com/programme-lv/competitions/s3bucket"
	"github.com/programme-lv/competitions/submsrvc"
	"golang.org/x/sync/errgroup"
)

type store interface {
	submsrvc.SubmRepo
	submsrvc.DataRepo
	submsrvc.ColumnRepo
	migrsrvc.CompRepo
	results.BoardRepo
	ListPhaseTasks(ctx context.Context, phaseID int64) ([]comp.Task, error)
}

func main() {
	cfg, err := conf.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	var dispatcher submsrvc.Dispatcher
	var sqsClient execsrvc.SqsApi
	if cfg.Aws.SubmQueueUrl != "" {
		client, err := execsrvc.NewSqsClient(ctx, cfg.Aws.Region)
		if err != nil {
			slog.Error("failed to create sqs client", "error", err)
			os.Exit(1)
		}
		sqsClient = client
		dataUrl, err := presigner(ctx, cfg, repo)
		if err != nil {
			slog.Error("failed to open data bucket", "error", err)
			os.Exit(1)
		}
		dispatcher = execsrvc.NewSqsDispatcher(client, cfg.Aws.SubmQueueUrl, cfg.Aws.StatusQueueUrl, dataUrl)
	} else {
		slog.Warn("SUBM_SQS_QUEUE_URL is not set, run requests are only recorded")
		dispatcher = execsrvc.NewRecordingDispatcher()
	}

	submSrvc := submsrvc.NewSubmSrvc(repo, repo, repo, dispatcher,
		submsrvc.PhaseTaskFanout{ListPhaseTasks: repo.ListPhaseTasks})
	migrSrvc := migrsrvc.NewMigrSrvc(repo, submSrvc)
	exporter := results.NewExporter(repo, repo)

	httpServer := http.NewHttpServer(submSrvc,
		migrSrvc.MigrateToNextHandler(),
		exporter.ExportHandler(),
		http.Options{
			JwtKey:         []byte(cfg.JwtKey),
			AllowedOrigins: cfg.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
			Env:            cfg.Env,
		})

	g, gctx := errgroup.WithContext(ctx)
	if sqsClient != nil && cfg.Aws.StatusQueueUrl != "" {
		g.Go(func() error {
			return execsrvc.StartReceivingCallbacksFromSqs(gctx, cfg.Aws.StatusQueueUrl,
				sqsClient, submSrvc, slog.Default().With("module", "callbacks"))
		})
	}
	g.Go(func() error {
		slog.Info("starting server", "address", cfg.HttpAddr, "env", cfg.Env)
		return httpServer.Serve(gctx, cfg.HttpAddr)
	})

	err = g.Wait()
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore falls back to process memory when no database is configured.
func openStore(ctx context.Context, cfg conf.Config) (store, error) {
	if cfg.Postgres.DB == "" {
		slog.Warn("POSTGRES_DB is not set, keeping state in memory")
		return memrepo.New(), nil
	}
	connStr, err := cfg.Postgres.ConnString(ctx, cfg.Aws.Region)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	return pgrepo.NewPgRepo(pool), nil
}

func presigner(ctx context.Context, cfg conf.Config, repo store) (func(context.Context, uuid.UUID) (string, error), error) {
	if cfg.Aws.DataBucket == "" {
		return nil, nil
	}
	bucket, err := s3bucket.NewS3Bucket(ctx, cfg.Aws.Region, cfg.Aws.DataBucket)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, dataKey uuid.UUID) (string, error) {
		data, err := repo.GetData(ctx, dataKey)
		if err != nil {
			return "", err
		}
		return bucket.PresignGet(ctx, data.DataFile)
	}, nil
}
