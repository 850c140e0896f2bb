package main

import (
	"context"
	"log"

	"ecgdx/adapters/artifacts"
	"ecgdx/adapters/dsp"
	"ecgdx/adapters/ingest"
	"ecgdx/adapters/model"
	"ecgdx/adapters/postgres"
	"ecgdx/app"
	"ecgdx/internal"
	"ecgdx/internal/config"
	"ecgdx/ports"
	"ecgdx/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env if present; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewDefaultLogger()

	// Serving artifacts are loaded once and shared read-only by all
	// concurrent requests; the process refuses to start without them.
	transform, err := artifacts.LoadScalingTransform(cfg.Artifacts.Dir, cfg.Pipeline.SegmentLength)
	if err != nil {
		log.Fatalf("cannot load scaling transform: %v", err)
	}
	labels, err := artifacts.LoadClassLabelMap(cfg.Artifacts.Dir)
	if err != nil {
		log.Fatalf("cannot load class mapping: %v", err)
	}
	logger.Info("loaded serving artifacts: %d classes, segment length %d", len(labels), cfg.Pipeline.SegmentLength)

	classifier, err := model.NewHTTPClassifier(cfg.Model.URL, cfg.Model.Timeout, len(labels))
	if err != nil {
		log.Fatalf("cannot create classifier client: %v", err)
	}

	service := app.NewDiagnosisService(
		dsp.NewConditioner(logger),
		dsp.NewPeakDetector(logger),
		dsp.NewSegmentExtractor(cfg.Pipeline.SegmentLength, logger),
		dsp.NewSegmentValidator(cfg.Pipeline.SegmentLength, logger),
		dsp.NewNormalizer(transform),
		classifier,
		labels,
		cfg.Pipeline.BatchSize,
		logger,
	)

	var history ports.DiagnosisRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("cannot connect to history database: %v", err)
		}
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("cannot migrate history schema: %v", err)
		}
		history = postgres.NewDiagnosisRepository(db)
		logger.Info("diagnosis history enabled")
	}

	server := ui.NewServer(ui.Config{
		Service:     service,
		Reader:      ingest.NewRecordingReader(cfg.Pipeline.SamplingRate, logger),
		Labels:      labels,
		History:     history,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Logger:      logger,
	})

	if err := server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatal("server failed: ", err)
	}
}
