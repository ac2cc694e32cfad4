package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"i4.energy/across/netmon/modem"
	"i4.energy/across/netmon/monitor"
)

func main() {
	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(os.Args[1:]))
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := newLogger(config)

	modemConfig, err := modem.NewConfigBuilder().
		WithATTimeout(config.ATTimeout).
		WithInitTimeout(config.InitTimeout).
		WithMaxRetries(config.MaxRetries).
		WithFailThreshold(config.FailThreshold).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Error().Err(err).Msg("failed to create modem config")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, config.InitTimeout)
	m, err := modem.New(initCtx, modemConfig)
	cancel()
	if err != nil {
		logger.Error().Err(err).Str("port", config.SerialPort).Msg("failed to open modem")
		os.Exit(1)
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close modem")
		}
	}()

	logger.Info().
		Str("port", config.SerialPort).
		Dur("interval", config.PollInterval).
		Bool("once", config.Once).
		Msg("starting network monitor")

	var csvLog *snapshotLogger
	if config.OutputDir != "" {
		csvLog, err = newSnapshotLogger(config.OutputDir, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("failed to open snapshot log")
			os.Exit(1)
		}
		defer csvLog.Close()
	}

	mon := monitor.New(
		modem.NewSession(m),
		monitor.Config{Interval: config.PollInterval, Once: config.Once},
		logger.With().Str("component", "monitor").Logger(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(mon, csvLog, logger)
	}()

	err = mon.Run(ctx)
	<-done

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info().Msg("shutdown signal received")
	default:
		logger.Error().Err(err).Msg("monitor stopped")
		os.Exit(1)
	}
}

// consume drains the monitor's channels until both close, printing a
// summary table per snapshot and appending the CSV row when enabled.
func consume(mon *monitor.Monitor, csvLog *snapshotLogger, logger zerolog.Logger) {
	snapshots := mon.Snapshots()
	events := mon.Events()
	for snapshots != nil || events != nil {
		select {
		case s, open := <-snapshots:
			if !open {
				snapshots = nil
				continue
			}
			now := time.Now()
			renderSnapshot(os.Stdout, s, now)
			if csvLog != nil {
				if err := csvLog.Write(s, now); err != nil {
					logger.Error().Err(err).Msg("failed to append snapshot log")
				}
			}
		case _, open := <-events:
			// incidents are logged where they occur; keep the channel
			// drained so the monitor never stalls on a full buffer
			if !open {
				events = nil
			}
		}
	}
}

func newLogger(config *AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if config.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
