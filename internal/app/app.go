package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=./app_mock.go -package=app -source=app.go

// Dependency is the interface that wraps the basic methods of a dependency required for the application.
type Dependency interface {
	// Start is anything a dependency needs to do before it's ready to be used
	Start() error
	// Stop is anything a dependency needs to do before it's ready to be stopped
	Stop() error
	// Name is the name of the dependency. It is used for logging and identification purposes, only.
	Name() string
}

type App struct {
	serviceName string
	// deps is the list of dependencies the application starts, in
	// registration order. Shutdown walks the same list backwards so event
	// sources stop before the sink they feed.
	deps []Dependency
	// depFailChan signals a dependency that failed to start.
	depFailChan chan error
	// osSignalChan receives the OS signal that begins shutdown.
	osSignalChan chan os.Signal
	// stopCalled allows stop to be called once
	stopCalled *atomic.Bool
	// runCalled allows Run to be called once
	runCalled *atomic.Bool
	// stopTimeout bounds how long the application waits for dependencies to stop.
	stopTimeout time.Duration
}

type Config struct {
	ServiceName string
	StopTimeout time.Duration
}

func (c *Config) validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if c.StopTimeout == 0 {
		errs = append(errs, errors.New("stop timeout is required"))
	}
	return errors.Join(errs...)
}

// CreateApp creates a new application with the provided dependencies.
func CreateApp(cfg *Config, deps ...Dependency) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &App{
		serviceName:  cfg.ServiceName,
		deps:         deps,
		stopTimeout:  cfg.StopTimeout,
		stopCalled:   &atomic.Bool{},
		runCalled:    &atomic.Bool{},
		depFailChan:  make(chan error, len(deps)), // one slot per dependency
		osSignalChan: make(chan os.Signal, 1),     // first signal we get shuts down the app
	}, nil
}

// Run starts every dependency and blocks until a dependency fails, the
// context is cancelled, or the OS asks the application to stop. It then runs
// the shutdown sequence and returns whatever went wrong along the way.
func (a *App) Run(ctx context.Context) error {
	if !a.runCalled.CompareAndSwap(false, true) {
		return errors.New("run has already been called")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, dep := range a.deps {
		// Each dependency runs in its own goroutine. Some, like the
		// receiver, stay inside Start() until shutdown; we never block
		// here, only listen for failures.
		go func(dep Dependency) {
			defer func() {
				if r := recover(); r != nil {
					a.depFailChan <- fmt.Errorf("panic in Start() for dependency %s: %v", dep.Name(), r)
				}
			}()

			log.Info().Msg("Starting dependency: " + dep.Name())
			if err := dep.Start(); err != nil {
				a.depFailChan <- fmt.Errorf("failure in Start() for dependency %s: %v",
					dep.Name(), err)
			}
		}(dep)
	}

	signal.Notify(a.osSignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.osSignalChan)

	var runErr error
	select {
	case <-runCtx.Done():
		log.Info().Msg("App context cancelled: shutting down")
	case depErr := <-a.depFailChan:
		log.Error().Msg("Dependency failed: " + depErr.Error())
		runErr = depErr
	case sig := <-a.osSignalChan:
		log.Info().Msg("OS signal received: " + sig.String() + ", shutdown beginning")
	}

	if err := a.stop(); err != nil {
		log.Error().Msg("Error stopping application: " + err.Error())
		return errors.Join(runErr, err)
	}

	return runErr
}

// stop attempts a graceful shutdown of each dependency, last registered
// first, so nothing feeds a component that has already gone away.
func (a *App) stop() error {
	if !a.stopCalled.CompareAndSwap(false, true) {
		return errors.New("stop has already been called")
	}

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i := len(a.deps) - 1; i >= 0; i-- {
			dep := a.deps[i]
			log.Info().Msg("Stopping dependency: " + dep.Name())
			if err := dep.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failure in Stop() for dependency %s: %v",
					dep.Name(), err))
			}
		}
		done <- errors.Join(errs...)
	}()

	// all dependencies must stop before we return, but not forever
	select {
	case err := <-done:
		return err
	case <-time.After(a.stopTimeout):
		return fmt.Errorf("timed out stopping dependencies after %s", a.stopTimeout)
	}
}
