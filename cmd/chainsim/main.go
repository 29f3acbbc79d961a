package main

import (
	"fmt"
	"os"

	"github.com/kaspanet/utxochain/infrastructure/logger"
	"github.com/kaspanet/utxochain/infrastructure/os/signal"
	"github.com/kaspanet/utxochain/util/panics"
	"github.com/kaspanet/utxochain/util/profiling"
	"github.com/kaspanet/utxochain/version"
)

func main() {
	defer panics.HandlePanic(log, "main", nil)
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}
	defer logger.BackendLog.Close()

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	sim, err := newSimulator(cfg)
	if err != nil {
		log.Criticalf("Error initializing the simulation: %+v", err)
		logger.BackendLog.Close()
		os.Exit(1)
	}
	defer sim.close()

	doneChan := make(chan error, 1)
	spawn("simulator.run", func() {
		doneChan <- sim.run(interrupt)
	})

	// run returns soon after an interrupt, so the archive is never closed
	// under it.
	err = <-doneChan
	if err != nil {
		log.Criticalf("Error in the simulation: %+v", err)
		return
	}
	sim.report()
}
