package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devicehub/devicehub/internal/application/association/usecases"
	httpapi "github.com/devicehub/devicehub/internal/interfaces/http"
	"github.com/devicehub/devicehub/internal/interfaces/cli/bootstrap"
	"github.com/devicehub/devicehub/internal/shared/version"
)

func main() {
	env := flag.String("env", "development", "Environment (development, test, production)")
	configPath := flag.String("config", "", "Path to config file")
	once := flag.Bool("once", false, "Run a single reconciliation and exit")
	flag.Parse()

	rt, err := bootstrap.Load(*env, *configPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	log := rt.Logger
	cfg := rt.Config
	log.Infow("starting reconciliation worker",
		"environment", rt.Env,
		"version", version.Version,
		"interval", cfg.Consistency.ReconcileInterval,
		"auto_repair", cfg.Consistency.AutoRepair)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Consistency.ReconcileEnabled = !*once

	container, err := httpapi.NewContainer(rt.DB, cfg, log)
	if err != nil {
		log.Errorw("failed to build container", "error", err)
		os.Exit(1)
	}
	defer container.Shutdown()

	if *once {
		repaired, err := usecases.NewReconcileJob(container.Reconcile(), cfg.Consistency.AutoRepair).Execute(ctx)
		if err != nil {
			log.Errorw("reconciliation failed", "error", err)
			return
		}
		log.Infow("reconciliation completed", "repaired", repaired)
		return
	}

	// the scheduled job fires immediately on start
	container.SchedulerManager().Start()
	<-ctx.Done()
	log.Infow("received signal, shutting down worker")
}
