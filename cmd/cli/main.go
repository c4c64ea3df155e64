package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/taskkeeper/internal/client/cli"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, closeFn, err := cli.Build(ctx, cfg, cli.Deps{
		In:       os.Stdin,
		Out:      os.Stdout,
		Log:      logging.New(os.Stderr, cfg.LogLevel),
		Registry: prometheus.DefaultRegisterer,
		Gatherer: prometheus.DefaultGatherer,
	})

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer func() { _ = closeFn() }()

	app.Run(ctx)

}
