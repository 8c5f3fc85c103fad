package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

//go:generate mockgen -destination=writer_mock.go -package=store -source=writer.go

const defaultRequestTimeout = 5 * time.Second

var (
	errAlreadyOpen = errors.New("store writer is already open: close was not called")
	errNotOpen     = errors.New("store writer is not open")
)

// litetableClient is the slice of the LiteTable service the writer needs.
type litetableClient interface {
	Write(ctx context.Context, in *proto.WriteRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
	CreateFamily(ctx context.Context, in *proto.CreateFamilyRequest, opts ...grpc.CallOption) (*proto.Empty, error)
}

// Writer batches row writes and pushes them to a LiteTable server over gRPC.
// A zero buffer size flushes every submission immediately; otherwise requests
// accumulate until their serialized size crosses the threshold. Close flushes
// whatever is still pending.
type Writer struct {
	mu     sync.Mutex
	opened bool

	target   string
	conn     *grpc.ClientConn
	client   litetableClient
	families []string

	bufferSize int64
	durable    bool
	timeout    time.Duration

	pending      []*proto.WriteRequest
	pendingBytes int64
}

type Config struct {
	Address string
	Port    int
	// WriteBufferSize is the flush threshold in bytes. Zero disables
	// buffering entirely.
	WriteBufferSize int64
	// DurableWrites surfaces flush failures to the caller. When off, failed
	// requests are logged and dropped.
	DurableWrites bool
	// EnsureFamilies lists column families created on open so first writes
	// do not race the schema.
	EnsureFamilies []string
	RequestTimeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Port <= 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	return errors.Join(errGrp...)
}

// New creates a closed writer. Open must be called before the first Submit.
func New(cfg *Config) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Writer{
		target:     fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		families:   cfg.EnsureFamilies,
		bufferSize: cfg.WriteBufferSize,
		durable:    cfg.DurableWrites,
		timeout:    timeout,
	}, nil
}

// Open dials the store and creates the configured column families. Opening
// an already open writer is a caller bug.
func (w *Writer) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opened {
		return errAlreadyOpen
	}

	conn, err := grpc.Dial(
		w.target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to dial store at %s: %w", w.target, err)
	}

	client := proto.NewLitetableServiceClient(conn)

	if len(w.families) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if _, err := client.CreateFamily(ctx, &proto.CreateFamilyRequest{
			Family: w.families,
		}); err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to create families %v: %w", w.families, err)
		}
	}

	w.conn = conn
	w.client = client
	w.opened = true

	log.Info().Str("target", w.target).Int64("bufferBytes", w.bufferSize).
		Msg("store writer open")
	return nil
}

// Submit queues one row write. Cells sharing a column family travel in a
// single request; families keep the order of their first cell.
func (w *Writer) Submit(rw *sink.RowWrite) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.opened {
		return errNotOpen
	}

	for _, r := range splitByFamily(rw) {
		w.pending = append(w.pending, r)
		w.pendingBytes += requestSize(r)
	}

	if w.bufferSize <= 0 || w.pendingBytes >= w.bufferSize {
		return w.flushLocked()
	}
	return nil
}

// Flush pushes every buffered request to the store.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.opened {
		return errNotOpen
	}
	return w.flushLocked()
}

// Close flushes the buffer and tears down the connection. Closing a closed
// writer is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.opened {
		return nil
	}
	w.opened = false

	flushErr := w.flushLocked()
	connErr := w.conn.Close()
	w.conn = nil
	w.client = nil

	return errors.Join(flushErr, connErr)
}

// flushLocked drains the pending queue. The queue is cleared up front so a
// failed request is never retried; durability only decides whether the
// failure is returned or logged.
func (w *Writer) flushLocked() error {
	if len(w.pending) == 0 {
		return nil
	}

	reqs := w.pending
	w.pending = nil
	w.pendingBytes = 0

	for _, r := range reqs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		_, err := w.client.Write(ctx, r)
		cancel()
		if err == nil {
			continue
		}
		if w.durable {
			return fmt.Errorf("failed to write row %q: %w", r.GetRowKey(), err)
		}
		log.Error().Err(err).Str("rowKey", r.GetRowKey()).
			Str("family", r.GetFamily()).Msg("dropping failed store write")
	}
	return nil
}

func splitByFamily(rw *sink.RowWrite) []*proto.WriteRequest {
	var order []string
	byFamily := make(map[string]*proto.WriteRequest)

	for _, c := range rw.Cells {
		r, ok := byFamily[c.Family]
		if !ok {
			r = &proto.WriteRequest{
				Family: c.Family,
				RowKey: string(rw.RowKey),
			}
			byFamily[c.Family] = r
			order = append(order, c.Family)
		}
		r.Qualifiers = append(r.Qualifiers, &proto.ColumnQualifier{
			Name:  c.Qualifier,
			Value: c.Value,
		})
	}

	reqs := make([]*proto.WriteRequest, 0, len(order))
	for _, f := range order {
		reqs = append(reqs, byFamily[f])
	}
	return reqs
}

func requestSize(r *proto.WriteRequest) int64 {
	n := int64(len(r.GetRowKey()) + len(r.GetFamily()))
	for _, q := range r.GetQualifiers() {
		n += int64(len(q.GetName()) + len(q.GetValue()))
	}
	return n
}
