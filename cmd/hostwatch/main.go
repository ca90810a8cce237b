package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/hostwatch/internal/config"
	"codeberg.org/mutker/hostwatch/internal/display"
	"codeberg.org/mutker/hostwatch/internal/errors"
	"codeberg.org/mutker/hostwatch/internal/history"
	"codeberg.org/mutker/hostwatch/internal/logger"
	"codeberg.org/mutker/hostwatch/internal/pid"
	"codeberg.org/mutker/hostwatch/internal/sampler"
	"codeberg.org/mutker/hostwatch/internal/scheduler"
	"codeberg.org/mutker/hostwatch/internal/sink"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// Validated by config.Load
	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level, logger.IsService())
	log := logger.Default()
	cfg.Log(log)

	if err := pid.Write(cfg.PidFile); err != nil {
		logger.Error().Err(err).Str("pid_file", cfg.PidFile).Msg("failed to write pid file")
		return 1
	}
	defer func() {
		if err := pid.Remove(cfg.PidFile); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	sinks, err := newSinks(cfg, log)
	if err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrInitApp, err)).Msg("failed to initialize sinks")
		return 1
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close sinks")
		}
	}()

	smp := sampler.New(sampler.NewHostProvider(), log)
	sched := scheduler.New(cfg, smp, display.NewConsole(os.Stdout), sinks, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := sched.Run(ctx); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).Msg("error in main loop")
		return 1
	}

	logger.Info().Msg("Exiting...")
	return 0
}

// newSinks composes the alert sinks. The event log is best effort: when it
// cannot be opened the watcher keeps running with the remaining sinks.
func newSinks(cfg *config.Config, log logger.Logger) (*sink.Multi, error) {
	sinks := []sink.Sink{sink.NewFile(cfg.LogFilePath)}

	if cfg.EventLog {
		eventLog, err := sink.NewEventLog(sink.EventSource)
		if err != nil {
			logger.Warn().Err(err).Msg("System event log unavailable, alerts go to the log file only")
		} else {
			sinks = append(sinks, eventLog)
		}
	}

	if cfg.History.Enabled {
		hcfg := history.DefaultConfig()
		hcfg.Enabled = true
		hcfg.DBPath = cfg.History.DBPath
		hcfg.BatchSize = cfg.History.BatchSize
		hcfg.BatchTimeout = cfg.History.BatchTimeout

		recorder, err := history.NewService(hcfg, log)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		sinks = append(sinks, recorder)
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Debug().Strs("sinks", names).Msg("Alert sinks ready")

	return sink.NewMulti(log, sinks...), nil
}

func closeAll(sinks []sink.Sink) {
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
