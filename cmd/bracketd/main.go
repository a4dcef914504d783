package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"bracket/internal/config"
	"bracket/internal/daemon"
	"bracket/internal/ipc"
	"bracket/internal/logging"
	"bracket/internal/notifications"
	"bracket/internal/orders"
	"bracket/internal/pipeline"
	"bracket/internal/processor"
	"bracket/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := orders.Open(cfg)
	if err != nil {
		logger.Error("open order store", logging.Error(err))
		return
	}
	defer store.Close()

	client, err := processor.NewFromConfig(cfg)
	if err != nil {
		logger.Error("configure processor client", logging.Error(err))
		return
	}

	notifier := notifications.NewService(cfg)
	manager := workflow.NewManager(cfg, store, client, notifier, logger)
	engine := pipeline.New(store, notifier, logger)

	d, err := daemon.New(cfg, store, manager, engine, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	if err := d.Start(); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-ctx.Done()
	logger.Info("bracketd shutting down")
}
