package modes

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ehsaniara/annotrain/internal/trainer/artifact"
	"github.com/ehsaniara/annotrain/internal/trainer/auth"
	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/dataset"
	"github.com/ehsaniara/annotrain/internal/trainer/health"
	"github.com/ehsaniara/annotrain/internal/trainer/logbuf"
	"github.com/ehsaniara/annotrain/internal/trainer/orchestrator"
	"github.com/ehsaniara/annotrain/internal/trainer/process"
	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
	"github.com/ehsaniara/annotrain/internal/trainer/server"
	"github.com/ehsaniara/annotrain/internal/trainer/stream"
	"github.com/ehsaniara/annotrain/pkg/config"
	"github.com/ehsaniara/annotrain/pkg/logger"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

// RunServer starts the training server with the provided configuration and
// blocks until SIGINT or SIGTERM. On shutdown it stops accepting jobs,
// cancels the running one and closes open log streams before returning.
func RunServer(cfg *config.Config) error {
	log := logger.WithField("mode", "server")

	log.Info("starting annotrain server",
		"address", cfg.GetServerAddress(),
		"dataDir", cfg.Storage.DataDir,
		"modelsDir", cfg.Storage.ModelsDir)

	platformInstance := platform.NewPlatform()

	authorizer, err := auth.NewAuthorizer(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}
	if !authorizer.Enabled() {
		log.Warn("authentication disabled, every request runs as admin")
	}

	commands, err := command.NewBuilder(cfg.Training.TrainCommand, cfg.Training.ExportCommand)
	if err != nil {
		return fmt.Errorf("failed to parse training commands: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change notifications for log followers.
	notifier := pubsub.NewPubSub[int64]()
	defer func() {
		if closeErr := notifier.Close(); closeErr != nil {
			log.Error("error closing log notifier", "error", closeErr)
		}
	}()

	logs := logbuf.NewRegistry(logbuf.Options{
		MaxLines:    cfg.Logs.MaxLines,
		RetainLines: cfg.Logs.RetainLines,
		FinishedTTL: cfg.Logs.FinishedTTL,
		MaxFinished: cfg.Logs.MaxFinished,
	}, notifier)
	go logs.RunJanitor(ctx, cfg.Logs.JanitorInterval)

	controller := process.NewController(platformInstance, cfg.Training.GracePeriod, cfg.Training.OutputDrainTimeout)
	locator := artifact.NewLocator(platformInstance, cfg.Training.Weights.Preferred, cfg.Training.Weights.Fallback)

	orch := orchestrator.New(logs, controller, locator, commands, orchestrator.NewUUIDGenerator(), orchestrator.Options{})
	orch.Start()

	httpServer := server.New(server.Deps{
		Config:        cfg,
		Platform:      platformInstance,
		Orchestrator:  orch,
		Streamer:      stream.NewStreamer(logs, stream.Options{PollInterval: cfg.Logs.PollInterval}),
		Runs:          locator,
		Dataset:       dataset.NewPreparer(platformInstance, cfg.Storage.DatasetDir),
		Commands:      commands,
		Auth:          authorizer,
		RunNamePrefix: orchestrator.RunNamePrefix,
	})

	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer, err = health.Start(cfg.GetHealthAddress())
		if err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Start(cfg.GetServerAddress())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	log.Info("server started successfully", "address", cfg.GetServerAddress())

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal, stopping server...", "signal", sig.String())
	case runErr = <-serveErr:
		if runErr != nil {
			log.Error("http server failed", "error", runErr)
		}
	}

	if healthServer != nil {
		healthServer.SetServing(false)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Jobs first so that every open stream sees its end of stream marker.
	if e := orch.Shutdown(shutdownCtx); e != nil {
		log.Error("orchestrator did not stop in time", "error", e)
	}
	if e := httpServer.Shutdown(shutdownCtx); e != nil {
		log.Error("error stopping http server", "error", e)
	}
	if healthServer != nil {
		healthServer.Stop()
	}

	log.Info("server stopped gracefully", "logs", logs.Stats().Buffers)
	return runErr
}
