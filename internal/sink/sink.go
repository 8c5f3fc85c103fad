package sink

import (
	"errors"
	"sync/atomic"

	"github.com/litetable/litetable-sink/internal/event"
)

//go:generate mockgen -destination=sink_mock.go -package=sink -source=sink.go

var (
	errAlreadyOpen = errors.New("sink is already open: close was not called")
	errNotOpen     = errors.New("sink is not open")
)

// storeWriter is the downstream half of the sink. It owns the store
// connection, any write buffering, and the flush-on-close semantics; the
// sink itself holds no state between events.
type storeWriter interface {
	Open() error
	Submit(w *RowWrite) error
	Close() error
}

// Sink copies events into the store by way of the mapper. Append is only
// valid between Open and the matching Close.
type Sink struct {
	mapper *Mapper
	writer storeWriter
	opened *atomic.Bool
}

type Config struct {
	// SystemFamily names the column family for the sink-injected system
	// columns (timestamp, host, priority, body). Empty disables them.
	SystemFamily string
	// WriteBody writes the event body as a system column under SystemFamily.
	WriteBody bool
	// AttrPrefix marks the attributes destined for the store. The
	// configuration layer applies DefaultAttrPrefix when the key is absent;
	// an explicitly empty prefix matches every attribute.
	AttrPrefix string
	// Writer persists the mapped rows.
	Writer storeWriter
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Writer == nil {
		errGrp = append(errGrp, errors.New("store writer is required"))
	}
	return errors.Join(errGrp...)
}

// New creates the sink around an immutable mapper configuration.
func New(cfg *Config) (*Sink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Sink{
		mapper: NewMapper(cfg.SystemFamily, cfg.WriteBody, cfg.AttrPrefix),
		writer: cfg.Writer,
		opened: &atomic.Bool{},
	}, nil
}

// Open acquires the store writer. Opening an already open sink is a caller
// bug and fails without touching the writer.
func (s *Sink) Open() error {
	if !s.opened.CompareAndSwap(false, true) {
		return errAlreadyOpen
	}
	if err := s.writer.Open(); err != nil {
		s.opened.Store(false)
		return err
	}
	return nil
}

// Append maps one event and submits the resulting row write. An event
// without a row key, or one that maps to zero cells, is dropped here and is
// not an error.
func (s *Sink) Append(e *event.Event) error {
	if !s.opened.Load() {
		return errNotOpen
	}

	w := s.mapper.Map(e)
	if w == nil || len(w.Cells) == 0 {
		return nil
	}

	return s.writer.Submit(w)
}

// Close releases the store writer, which flushes whatever it buffered.
// Closing a closed sink is a no-op.
func (s *Sink) Close() error {
	if !s.opened.CompareAndSwap(true, false) {
		return nil
	}
	return s.writer.Close()
}

// Start implements the app dependency contract by opening the sink.
func (s *Sink) Start() error {
	return s.Open()
}

// Stop closes the sink.
func (s *Sink) Stop() error {
	return s.Close()
}

// Name identifies the sink in lifecycle logs.
func (s *Sink) Name() string {
	return "Attribute Sink"
}
