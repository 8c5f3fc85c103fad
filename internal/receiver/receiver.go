package receiver

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	receiverName = "Event Receiver"

	defaultMaxConnections = 100
)

type handler interface {
	Handle(conn net.Conn)
}

// Receiver accepts event-source connections and hands each one to the
// handler. It bounds concurrent connections with a semaphore; connections
// past the limit are closed immediately.
type Receiver struct {
	listener net.Listener
	port     int
	handler  handler

	maxConnections int
	connSemaphore  chan struct{}
	activeConns    sync.WaitGroup
	enableTLS      bool
}

type Config struct {
	// Certificate is required when EnableTLS is set.
	Certificate    *tls.Certificate
	Port           int
	Handler        handler
	MaxConnections int
	EnableTLS      bool
}

func (c *Config) validate() error {
	var errGrp []error

	if c.Port < 0 || c.Port > 65535 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.Handler == nil {
		errGrp = append(errGrp, errors.New("handler is required"))
	}
	if c.EnableTLS && c.Certificate == nil {
		errGrp = append(errGrp, errors.New("certificate is required when TLS is enabled"))
	}

	return errors.Join(errGrp...)
}

// New returns a receiver already bound to its port. Port 0 binds an
// ephemeral port; Addr reports the one chosen.
func New(cfg *Config) (*Receiver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var listener net.Listener
	var err error
	if cfg.EnableTLS {
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{*cfg.Certificate},
			MinVersion:   tls.VersionTLS12,
		}
		listener, err = tls.Listen("tcp", fmt.Sprintf(":%d", cfg.Port), tlsConfig)
	} else {
		listener, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = defaultMaxConnections
	}

	return &Receiver{
		listener:       listener,
		port:           cfg.Port,
		handler:        cfg.Handler,
		maxConnections: maxConns,
		connSemaphore:  make(chan struct{}, maxConns),
		enableTLS:      cfg.EnableTLS,
		activeConns:    sync.WaitGroup{},
	}, nil
}

// Addr is the listener address, useful when the receiver was bound to an
// ephemeral port.
func (r *Receiver) Addr() string {
	return r.listener.Addr().String()
}

// Start accepts connections until the listener closes. It blocks, so the
// application runs it inside a dependency goroutine.
func (r *Receiver) Start() error {
	log.Info().Str("addr", r.Addr()).Bool("tls", r.enableTLS).
		Int("maxConnections", r.maxConnections).Msg("receiver listening")

	for {
		conn, err := r.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		remoteAddr := conn.RemoteAddr().String()

		// Try to acquire a connection slot
		select {
		case r.connSemaphore <- struct{}{}:
			r.activeConns.Add(1)
			go func() {
				defer func() {
					<-r.connSemaphore
					r.activeConns.Done()
				}()

				log.Debug().Str("remoteAddr", remoteAddr).Msg("handling connection")
				r.handler.Handle(conn)
			}()
		default:
			// Max connections reached, reject the connection
			_ = conn.Close()
			log.Warn().Str("remoteAddr", remoteAddr).
				Msg("rejected connection: max connections reached")
		}
	}
}

// Stop will stop the receiver from accepting new connections and waits for
// in-flight connections to drain.
func (r *Receiver) Stop() error {
	err := r.listener.Close()
	r.activeConns.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Name returns the name of the receiver.
func (r *Receiver) Name() string {
	return receiverName
}
