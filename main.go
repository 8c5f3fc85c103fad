package main

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"slices"
	"time"

	"github.com/litetable/litetable-sink/internal/app"
	"github.com/litetable/litetable-sink/internal/config"
	"github.com/litetable/litetable-sink/internal/receiver"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/litetable/litetable-sink/internal/source"
	"github.com/litetable/litetable-sink/internal/store"
	"github.com/rs/zerolog"
)

const (
	defaultServerCert = "server.crt"
	defaultServerKey  = "server.key"

	defaultListenPort  = 9444
	defaultStopTimeout = 30 * time.Second
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

func initialize() (*app.App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var deps []app.Dependency

	// The writer guarantees these families exist before the first event
	// lands, the system family included.
	families := slices.Clone(cfg.EnsureFamilies)
	if cfg.SystemFamily != "" && !slices.Contains(families, cfg.SystemFamily) {
		families = append(families, cfg.SystemFamily)
	}

	writer, err := store.New(&store.Config{
		Address:         cfg.StoreAddress,
		Port:            cfg.StorePort,
		WriteBufferSize: cfg.WriteBufferSize,
		DurableWrites:   cfg.DurableWrites,
		EnsureFamilies:  families,
	})
	if err != nil {
		return nil, err
	}

	// The sink owns the writer lifecycle: it opens the store connection on
	// start and flushes it on stop.
	eventSink, err := sink.New(&sink.Config{
		SystemFamily: cfg.SystemFamily,
		WriteBody:    cfg.WriteBody,
		AttrPrefix:   cfg.AttrPrefix,
		Writer:       writer,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, eventSink)

	listenPort := cfg.ListenPort
	if listenPort == 0 {
		listenPort = defaultListenPort
	}

	receiverCfg := &receiver.Config{
		Port:           listenPort,
		Handler:        eventSink,
		MaxConnections: cfg.MaxConnections,
		EnableTLS:      cfg.EnableTLS,
	}
	if cfg.EnableTLS {
		liteTableDir, err := config.GetLitetableDir()
		if err != nil {
			return nil, err
		}

		cert, err := tls.LoadX509KeyPair(
			filepath.Join(liteTableDir, defaultServerCert),
			filepath.Join(liteTableDir, defaultServerKey),
		)
		if err != nil {
			return nil, err
		}
		receiverCfg.Certificate = &cert
	}

	rcv, err := receiver.New(receiverCfg)
	if err != nil {
		return nil, err
	}
	deps = append(deps, rcv)

	// The CDC mirror is optional; configuring a source address turns it on.
	if cfg.CDCSourceAddress != "" {
		mirror, err := source.New(&source.Config{
			Address:    cfg.CDCSourceAddress,
			Port:       cfg.CDCSourcePort,
			Replay:     cfg.CDCReplay,
			AttrPrefix: cfg.AttrPrefix,
			Sink:       eventSink,
		})
		if err != nil {
			return nil, err
		}
		deps = append(deps, mirror)
	}

	application, err := app.CreateApp(&app.Config{
		ServiceName: "LiteTable Sink",
		StopTimeout: defaultStopTimeout,
	}, deps...)
	if err != nil {
		return nil, err
	}

	return application, nil
}
