// cmd/wardkeeper/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/FairForge/wardkeeper/internal/api"
	"github.com/FairForge/wardkeeper/internal/archive"
	"github.com/FairForge/wardkeeper/internal/catalog"
	"github.com/FairForge/wardkeeper/internal/config"
	"github.com/FairForge/wardkeeper/internal/dispatch"
	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/history"
	"github.com/FairForge/wardkeeper/internal/ledger"
	"github.com/FairForge/wardkeeper/internal/metrics"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("WARDKEEPER_CONFIG"))
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Strategy catalog: authored file, or the built-in table.
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			logger.Fatal("could not load strategy catalog",
				zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
		logger.Info("loaded authored catalog", zap.String("path", cfg.Catalog.Path))
	}

	// Resource gate.
	var gate ledger.Gate
	switch cfg.Ledger.Mode {
	case "memory":
		pool := ledger.NewMemoryLedger()
		seedDemoBalances(pool, cat)
		gate = pool
		logger.Info("using in-memory resource ledger")
	case "postgres":
		db, err := sql.Open("postgres", cfg.Ledger.DSN)
		if err != nil {
			logger.Fatal("could not open ledger database", zap.Error(err))
		}
		pg := ledger.NewPostgresLedger(db, logger)
		if err := pg.InitSchema(context.Background()); err != nil {
			logger.Fatal("could not initialize ledger schema", zap.Error(err))
		}
		gate = pg
		logger.Info("using postgres resource ledger")
	default:
		logger.Fatal("invalid ledger mode", zap.String("mode", cfg.Ledger.Mode))
	}

	// History, with an optional durable sink.
	logOpts := []history.LogOption{history.WithLogger(logger)}
	if cfg.Audit.SinkMode == "postgres" {
		db, err := sql.Open("postgres", cfg.Audit.DSN)
		if err != nil {
			logger.Fatal("could not open audit database", zap.Error(err))
		}
		sink := history.NewPostgresSink(db, logger)
		if err := sink.InitSchema(context.Background()); err != nil {
			logger.Fatal("could not initialize audit schema", zap.Error(err))
		}
		logOpts = append(logOpts, history.WithSink(sink))
		logger.Info("mirroring fault history to postgres")
	}
	faultLog := history.NewLog(logOpts...)

	store := metrics.NewStore()
	exporter := metrics.NewExporter(store)

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithGateTimeout(cfg.Dispatch.GateTimeout),
	}
	if cfg.Dispatch.StormRate > 0 {
		dispatchOpts = append(dispatchOpts,
			dispatch.WithStormThreshold(cfg.Dispatch.StormRate, cfg.Dispatch.StormBurst))
	}
	dispatcher := dispatch.New(cat, gate, store, faultLog, dispatchOpts...)

	handlerOpts := []api.HandlerOption{
		api.WithExportDir(cfg.Audit.ExportDir),
		api.WithCompression(cfg.Audit.Compress),
	}
	if cfg.Archive.Enabled {
		uploader, err := archive.NewUploader(
			cfg.Archive.Endpoint, cfg.Archive.Region, cfg.Archive.Bucket,
			cfg.Archive.AccessKey, cfg.Archive.SecretKey, logger)
		if err != nil {
			logger.Fatal("could not initialize snapshot archive", zap.Error(err))
		}
		handlerOpts = append(handlerOpts, api.WithUploader(uploader))
	}

	handler := api.NewHandler(dispatcher, faultLog, store, exporter, logger, handlerOpts...)
	server := api.NewServer(cfg.Server.Port, handler, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}

		exportFinalSnapshot(cfg, faultLog, logger)
		os.Exit(0)
	}()

	logger.Info("wardkeeper started",
		zap.Int("port", cfg.Server.Port),
		zap.String("ledger", cfg.Ledger.Mode),
		zap.String("audit_sink", cfg.Audit.SinkMode))

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// seedDemoBalances stocks the in-memory ledger with every resource the
// catalog can spend, so the demo deployment exercises real gating instead of
// skipping every strategy.
func seedDemoBalances(pool *ledger.MemoryLedger, cat *catalog.Catalog) {
	const demoStock = 100
	for _, category := range fault.Categories() {
		chain, err := cat.StrategiesFor(category)
		if err != nil {
			continue
		}
		for _, strategy := range chain {
			for resource := range strategy.Cost {
				pool.Deposit(resource, demoStock)
			}
		}
	}
}

// exportFinalSnapshot flushes the audit history to disk on the way out.
func exportFinalSnapshot(cfg *config.Config, faultLog *history.Log, logger *zap.Logger) {
	if faultLog.Len() == 0 {
		return
	}
	name := "faults-final-" + time.Now().UTC().Format("20060102T150405") + ".json"
	if cfg.Audit.Compress {
		name += ".snappy"
	}
	path := filepath.Join(cfg.Audit.ExportDir, name)

	var err error
	if cfg.Audit.Compress {
		err = faultLog.ExportCompressed(path)
	} else {
		err = faultLog.Export(path)
	}
	if err != nil {
		logger.Error("final snapshot export failed", zap.Error(err))
		return
	}
	logger.Info("final snapshot exported", zap.String("path", path), zap.Int("faults", faultLog.Len()))
}
