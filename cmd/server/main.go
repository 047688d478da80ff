package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	engHandler "relato/internal/engagement/handler"
	engMetrics "relato/internal/engagement/metrics"
	engService "relato/internal/engagement/service"
	activityStore "relato/internal/engagement/store/activity"
	"relato/internal/engagement/stream"
	evalHandler "relato/internal/evaluation/handler"
	evalMetrics "relato/internal/evaluation/metrics"
	evalModels "relato/internal/evaluation/models"
	evalService "relato/internal/evaluation/service"
	evalStore "relato/internal/evaluation/store/evaluation"
	modMetrics "relato/internal/moderation/metrics"
	"relato/internal/moderation/scorer"
	modService "relato/internal/moderation/service"
	notifHandler "relato/internal/notification/handler"
	"relato/internal/notification/publisher"
	notifService "relato/internal/notification/service"
	notifStore "relato/internal/notification/store/notification"
	"relato/internal/platform/config"
	"relato/internal/platform/httpserver"
	"relato/internal/platform/kafka"
	"relato/internal/platform/logger"
	platformMetrics "relato/internal/platform/metrics"
	"relato/internal/platform/middleware"
	platformRedis "relato/internal/platform/redis"
	reportHandler "relato/internal/report/handler"
	reportMetrics "relato/internal/report/metrics"
	reportService "relato/internal/report/service"
	reportStore "relato/internal/report/store/report"
	userStore "relato/internal/user/store/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// stores groups the persistence layer so run can wire either backend.
type stores struct {
	activity      engService.ActivityStore
	evaluations   evalService.EvaluationStore
	users         evalService.UserLocator
	notifications notifService.Store
	reports       reportService.Store
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	st, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// The activity stream is best-effort end to end; an unreachable
	// broker must not keep the platform down.
	var kgoClient *kgo.Client
	kafkaClient, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		log.Warn("kafka unavailable, activity streaming disabled", "error", err)
	} else if kafkaClient != nil {
		defer kafkaClient.Close()
		kgoClient = kafkaClient.Client
	}

	reg := prometheus.DefaultRegisterer

	moderator := modService.New(
		scorer.NewCommand(scorer.Config{
			Executable: cfg.Moderation.Executable,
			Script:     cfg.Moderation.Script,
			Timeout:    cfg.Moderation.Timeout,
		}, scorer.WithLogger(log)),
		modService.WithLogger(log),
		modService.WithMetrics(modMetrics.New(reg)),
		modService.WithThreshold(cfg.Moderation.Threshold),
		modService.WithMaxImages(cfg.Moderation.MaxImages),
		modService.WithConcurrency(cfg.Moderation.Concurrency),
	)

	notifications := notifService.New(st.notifications,
		notifService.WithLogger(log),
		notifService.WithPublisher(publisher.NewRedis(redisClient)),
	)

	evaluations := evalService.New(st.evaluations, st.users,
		evalService.WithLogger(log),
		evalService.WithMetrics(evalMetrics.New(reg)),
		evalService.WithGranularity(evalModels.Granularity(cfg.Evaluation.WindowsPerYear)),
	)

	engagement := engService.New(st.activity,
		engService.WithLogger(log),
		engService.WithMetrics(engMetrics.New(reg)),
		engService.WithPublisher(stream.New(kgoClient,
			stream.WithLogger(log),
			stream.WithTopic(cfg.Kafka.ActivityTopic),
		)),
		engService.WithStreakLookback(cfg.Engagement.LookbackDays),
		engService.WithReportCounter(st.reports),
		engService.WithEvaluationChecker(evaluations),
	)

	reports := reportService.New(moderator, st.reports,
		reportService.WithLogger(log),
		reportService.WithMetrics(reportMetrics.New(reg)),
		reportService.WithActivityRecorder(engagement),
		reportService.WithNotifier(notifications),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestContext(log))
	router.Use(middleware.Instrument(platformMetrics.New(reg)))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	reportHandler.New(reports, cfg.Moderation.UploadDir, log).Register(router)
	engHandler.New(engagement, log).Register(router)
	evalHandler.New(evaluations, log).Register(router)
	notifHandler.New(notifications, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting relato", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStores selects postgres stores when a DSN is configured and
// in-memory stores otherwise.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, func(), error) {
	if cfg.Postgres.DSN == "" {
		log.Warn("no postgres DSN configured, using in-memory stores")
		return stores{
			activity:      activityStore.NewInMemory(),
			evaluations:   evalStore.NewInMemory(),
			users:         userStore.NewInMemory(),
			notifications: notifStore.NewInMemory(),
			reports:       reportStore.NewInMemory(),
		}, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return stores{}, nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return stores{}, nil, fmt.Errorf("ping postgres: %w", err)
	}

	return stores{
		activity:      activityStore.NewPostgres(db),
		evaluations:   evalStore.NewPostgres(db),
		users:         userStore.NewPostgres(db),
		notifications: notifStore.NewPostgres(db),
		reports:       reportStore.NewPostgres(db),
	}, func() { db.Close() }, nil
}
