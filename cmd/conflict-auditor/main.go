package main

import (
	"context"
	"crewcall/internal/auditor"
	equipmentrepo "crewcall/internal/equipment/repository"
	eventsrepo "crewcall/internal/events/repository"
	"crewcall/pkg/config"
	"crewcall/pkg/kafka"
	kafka_config "crewcall/pkg/kafka/config"
	kafka_middleware "crewcall/pkg/kafka/middleware"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	ServiceName  = "conflict-auditor"
	sweepTimeout = 5 * time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Conflict Auditor")
	a := auditor.NewAuditor(
		eventsrepo.NewMongoEventRepository(cfg),
		equipmentrepo.NewMongoEquipmentBookingRepository(cfg),
		cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := a.ScheduleSweep(scheduler, sweepTimeout); err != nil {
		cfg.Log.Fatal("Failed to schedule conflict sweep", "error", err)
	}
	scheduler.Start()
	cfg.Log.Info("Conflict sweep scheduled",
		"schedule", cfg.ConflictSweepSchedule,
		"horizon", cfg.ConflictSweepHorizon,
	)

	var wg sync.WaitGroup
	if cfg.KafkaEnabled {
		consumer, metrics := newConsumer(cfg, a)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				cfg.Log.Error("Kafka consumer stopped", "error", err)
			}
		}()
		defer func() {
			if err := consumer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka consumer", "error", err)
			}
			if metrics != nil {
				metrics.LogMetrics(cfg.Log)
			}
		}()
	} else {
		cfg.Log.Info("Kafka disabled, running periodic sweep only")
	}

	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received")

	<-scheduler.Stop().Done()
	wg.Wait()
	cfg.Log.Info("Conflict Auditor stopped")
}

func newConsumer(cfg *config.Config, a *auditor.Auditor) (*kafka.Consumer, *kafka_middleware.Metrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.SchedulingTopic, cfg.AuditorGroupID, cfg.SchedulingDLQTopic, a.HandleMessage, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if !kafkaCfg.EnableMiddleware {
		return consumer, nil
	}
	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
	return consumer, metrics
}
