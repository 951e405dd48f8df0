// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketplace-workers/internal/common/camunda"
	"marketplace-workers/internal/common/config"
	"marketplace-workers/internal/common/database"
	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/common/observability"
	"marketplace-workers/internal/moderation"
	"marketplace-workers/pkg/registry"

	cfs "marketplace-workers/internal/workers/application/calculate-fit-score"
	car "marketplace-workers/internal/workers/application/create-application-record"
	sn "marketplace-workers/internal/workers/application/send-notification"
	ejp "marketplace-workers/internal/workers/job/evaluate-job-posting"
	ijp "marketplace-workers/internal/workers/job/index-job-posting"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
			RetryConfig:            camunda.DefaultRetryConfig,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load Activity Registry ---
	if cfg.Registry.Path != "" {
		reg, err := registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Warn("activity registry load failed", zap.Error(err))
		} else {
			zapLog.Info("activity registry loaded",
				zap.String("version", reg.Version),
				zap.Int("activities", len(reg.Activities)),
			)
		}
	}

	rules := buildRuleSet(cfg.Moderation)

	// --- Register Workers ---

	var jobWorkers []*camunda.Worker
	register := func(w *camunda.Worker) {
		if w != nil {
			jobWorkers = append(jobWorkers, w)
		}
	}

	// instrument wraps a handler with a span plus throughput and latency
	// instruments, labelled by task type. Outcome counts come from the
	// handlers themselves, which see the complete/fail branch.
	instrument := func(taskType string, handle func(worker.JobClient, entities.Job)) func(worker.JobClient, entities.Job) {
		return func(client worker.JobClient, job entities.Job) {
			spanCtx, end := obs.StartSpan(context.Background(), taskType)
			start := time.Now()
			handle(client, job)
			end()
			elapsed := time.Since(start)
			obs.RecordJobProcessed(spanCtx, taskType)
			obs.RecordJobDuration(spanCtx, elapsed, taskType)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		}
	}

	if cfg.Workers[ejp.TaskType].Enabled {
		handler := ejp.NewHandler(
			&ejp.Config{
				CacheTTL: cacheTTL(cfg.Moderation.CacheTTLMinutes, 10*time.Minute),
				Timeout:  time.Duration(cfg.Workers[ejp.TaskType].Timeout) * time.Millisecond,
			},
			rules, pg.DB, redis.Client, log,
		)
		register(startWorker(camundaClient, ejp.TaskType, cfg.Workers[ejp.TaskType], instrument(ejp.TaskType, handler.Handle), zapLog))
	}

	if cfg.Workers[ijp.TaskType].Enabled {
		indexName := cfg.Database.Elasticsearch.JobIndex
		if indexName == "" {
			indexName = "job-postings"
		}
		handler := ijp.NewHandler(
			&ijp.Config{
				IndexName: indexName,
				Timeout:   time.Duration(cfg.Workers[ijp.TaskType].Timeout) * time.Millisecond,
			},
			ijp.NewESIndexer(esClient.Client), log,
		)
		register(startWorker(camundaClient, ijp.TaskType, cfg.Workers[ijp.TaskType], instrument(ijp.TaskType, handler.Handle), zapLog))
	}

	if cfg.Workers[cfs.TaskType].Enabled {
		handler := cfs.NewHandler(
			&cfs.Config{
				CacheTTL: cacheTTL(cfg.Matching.CacheTTLMinutes, 15*time.Minute),
				Timeout:  time.Duration(cfg.Workers[cfs.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, nil, log,
		)
		register(startWorker(camundaClient, cfs.TaskType, cfg.Workers[cfs.TaskType], instrument(cfs.TaskType, handler.Handle), zapLog))
	}

	if cfg.Workers[car.TaskType].Enabled {
		handler := car.NewHandler(
			&car.Config{
				Timeout: time.Duration(cfg.Workers[car.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		register(startWorker(camundaClient, car.TaskType, cfg.Workers[car.TaskType], instrument(car.TaskType, handler.Handle), zapLog))
	}

	if cfg.Workers[sn.TaskType].Enabled {
		handler, err := sn.NewHandler(
			&sn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-notification handler", zap.Error(err))
		}
		register(startWorker(camundaClient, sn.TaskType, cfg.Workers[sn.TaskType], instrument(sn.TaskType, handler.Handle), zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range jobWorkers {
		w.Close()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildRuleSet starts from the built-in banks and applies config overrides.
func buildRuleSet(mc config.ModerationConfig) moderation.RuleSet {
	rules := moderation.DefaultRuleSet()
	if len(mc.BannedKeywords) > 0 {
		rules.BannedKeywords = mc.BannedKeywords
	}
	if len(mc.BlacklistedDomains) > 0 {
		rules.BlacklistedDomains = mc.BlacklistedDomains
	}
	if len(mc.MisleadingClaims) > 0 {
		rules.MisleadingClaims = mc.MisleadingClaims
	}
	if len(mc.SuspiciousPhrases) > 0 {
		rules.SuspiciousPhrases = mc.SuspiciousPhrases
	}
	if len(mc.HighRiskCategories) > 0 {
		rules.HighRiskCategories = mc.HighRiskCategories
	}
	if len(mc.PushyTitlePhrases) > 0 {
		rules.PushyTitlePhrases = mc.PushyTitlePhrases
	}
	if mc.ReviewTrustScore > 0 {
		rules.ReviewTrustScore = mc.ReviewTrustScore
	}
	if mc.AutoApproveTrustScore > 0 {
		rules.AutoApproveTrustScore = mc.AutoApproveTrustScore
	}
	return rules
}

func cacheTTL(minutes int, fallback time.Duration) time.Duration {
	if minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return client.StartWorker(
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc,
		log,
	)
}
