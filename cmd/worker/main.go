package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/detect"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/observability"
	"github.com/your-org/argus/internal/queue"
	"github.com/your-org/argus/internal/storage"
	"github.com/your-org/argus/internal/vision"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	workerCount := flag.Int("workers", 4, "concurrent frame workers")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting Argus Detection Worker", "workers", *workerCount)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Detection engine; alerts from background runs go through NATS so
	// every API instance can broadcast them.
	client := vision.NewOpenAIClient(cfg.Vision)
	engine := detect.NewEngine(client, db, db, minioStore, minioStore, producer, cfg.Detection)

	slog.Info("detection engine initialized", "model", cfg.Vision.Model)

	// Create NATS consumer
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming frame tasks
	err = consumer.ConsumeFrames(ctx, "detection-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var task models.FrameTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			slog.Error("unmarshal frame task", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		_, err := engine.Run(ctx, detect.RunInput{
			Frame: detect.Frame{
				Ref:       task.FrameRef,
				Timestamp: task.Timestamp,
				Location:  task.Location,
			},
			Mode:   models.DetectionRealtime,
			CaseID: task.CaseID,
		})
		if err != nil {
			// Fatal upstream errors are not worth redelivering; the
			// retry would fail identically until the account is fixed.
			if vision.IsFatal(err) {
				slog.Error("dropping frame, vision quota exhausted", "frame", task.FrameID, "error", err)
				return nil
			}
			return fmt.Errorf("process frame %s: %w", task.FrameID, err)
		}
		return nil
	}, *workerCount)
	if err != nil {
		slog.Error("start frame consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}
