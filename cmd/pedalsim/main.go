package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/gopedal/pkg/adc"
	"github.com/itohio/gopedal/pkg/config"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/midiout"
	"github.com/itohio/gopedal/pkg/pedal"
	"github.com/itohio/gopedal/pkg/store"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

func main() {
	var (
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		midiPortFlag  = flag.String("midi-port", "", "MIDI output port name override (empty = log only)")
		storageFlag   = flag.String("storage", "", "Calibration storage file override")
		logLevelFlag  = flag.String("log-level", "", "Log level override: error, warn, info, debug")
		listPortsFlag = flag.Bool("list-ports", false, "List MIDI output ports and exit")
	)
	flag.Parse()

	if *listPortsFlag {
		for _, name := range midiout.Ports() {
			fmt.Println(name)
		}
		midi.CloseDriver()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *midiPortFlag != "" {
		cfg.MIDI.Port = *midiPortFlag
	}
	if *storageFlag != "" {
		cfg.Storage.Path = *storageFlag
	}
	if *logLevelFlag != "" {
		cfg.Logging.Level = *logLevelFlag
	}

	level, err := diag.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := setupLogger(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	defer midi.CloseDriver()

	medium, err := store.OpenFile(cfg.Storage.Path, cfg.Storage.Size)
	if err != nil {
		return err
	}
	defer medium.Close()

	st := store.New(medium, cfg.Pipeline.DomainMax)
	migrated, err := st.Prepare(cfg.Storage.Version)
	if err != nil {
		return err
	}
	if migrated {
		logger.Warn("storage version changed, calibration reset", "path", cfg.Storage.Path, "version", cfg.Storage.Version)
	}

	var emitter pedal.Emitter = logEmitter{log: logger}
	if cfg.MIDI.Port != "" {
		port, err := midiout.OpenPort(cfg.MIDI.Port)
		if err != nil {
			return err
		}
		logger.Info("sending to midi port", "port", port.Name())
		emitter = port
	}

	sim := adc.NewMock(cfg.MockConfig())
	for _, p := range cfg.Pedals {
		sim.SetEnabled(p.Enable, true)
	}
	sweeps := cfg.Sweeps()

	controller, err := pedal.New(cfg.Params(), cfg.Channels(), pedal.Deps{
		Sampler:  adc.NewSource(sim, cfg.Pipeline.DomainMax),
		Switch:   sim,
		Emitter:  emitter,
		Store:    st,
		Observer: diag.NewLogger(logger),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	move := func(now time.Time) {
		for _, s := range sweeps {
			s.Apply(sim, now.Sub(start))
		}
	}

	move(start)
	controller.Begin(start)
	logger.Info("simulation started", "pedals", len(cfg.Pedals), "tick", cfg.Pipeline.Tick)

	// Pedals move on their own ticker so the controller loop stays the one the firmware runs.
	go func() {
		ticker := time.NewTicker(cfg.Pipeline.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				move(now)
			}
		}
	}()

	err = controller.Run(ctx, func(err error) {
		logger.Debug("tick failed", "err", err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutting down, saving calibration")
	return controller.Flush(time.Now())
}
