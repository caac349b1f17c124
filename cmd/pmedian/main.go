// SPDX-License-Identifier: MIT

// Command pmedian solves (capacitated) p-median instances with swap local
// search or VNS.
//
//	pmedian -p 10 --dm dist.txt -w weights.txt -c caps.txt --method VNS_CPMP -t 10m
//
// Flags, pmedian.yaml and PMEDIAN_* variables are described in package config.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/pmedian/config"
	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/metrics"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	inst, err := instance.Load(cfg.Files(), cfg.P)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load instance")
	}
	log.Info().
		Int("locations", len(inst.Locations())).
		Int("customers", len(inst.Customers())).
		Int("p", inst.P()).
		Int("demand", inst.TotalDemand()).
		Msg("instance loaded")

	if cfg.Metrics != "" {
		metrics.RegisterDefault()
	}

	if err := run(ctx, cfg, inst, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}
