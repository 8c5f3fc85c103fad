package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	v1 "github.com/litetable/litetable-cdc/go/v1"
	"github.com/litetable/litetable-sink/internal/event"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

//go:generate mockgen -destination=cdc_mock.go -package=source -source=cdc.go

// eventSink accepts the events rebuilt from the change stream.
type eventSink interface {
	Append(e *event.Event) error
}

// Mirror subscribes to a LiteTable CDC stream and replays every write into
// the sink as a synthetic event. Reads, deletes and tombstones are skipped;
// mirroring only moves data forward.
type Mirror struct {
	target     string
	clientID   string
	replay     bool
	attrPrefix string
	sink       eventSink

	mu     sync.Mutex
	conn   *grpc.ClientConn
	ctx    context.Context
	cancel context.CancelFunc
}

type Config struct {
	Address string
	Port    int
	// Replay asks the stream for past events before live ones.
	Replay bool
	// AttrPrefix must match the sink's prefix so the rebuilt attributes
	// route back into the same families.
	AttrPrefix string
	Sink       eventSink
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Port <= 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.Sink == nil {
		errGrp = append(errGrp, errors.New("sink is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Mirror, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Mirror{
		target:     fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		clientID:   uuid.NewString(),
		replay:     cfg.Replay,
		attrPrefix: cfg.AttrPrefix,
		sink:       cfg.Sink,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start subscribes and consumes the stream until Stop cancels it. A broken
// stream is returned as a failure so the application can shut down instead
// of silently losing the mirror.
func (m *Mirror) Start() error {
	conn, err := grpc.Dial(
		m.target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to dial CDC source at %s: %w", m.target, err)
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	client := v1.NewCDCServiceClient(conn)
	stream, err := client.CDCStream(m.ctx, &v1.CDCSubscriptionRequest{
		ClientId: m.clientID,
		Replay:   m.replay,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to CDC stream: %w", err)
	}

	log.Info().Str("target", m.target).Str("clientId", m.clientID).
		Bool("replay", m.replay).Msg("CDC mirror subscribed")

	for {
		evt, err := stream.Recv()
		if err != nil {
			select {
			case <-m.ctx.Done():
				return nil
			default:
			}
			return fmt.Errorf("CDC stream from %s broke: %w", m.target, err)
		}
		m.mirror(evt)
	}
}

// mirror rebuilds one change event and appends it. The row key attribute and
// a single family:qualifier attribute are enough for the mapper to land the
// value in the same cell on this side.
func (m *Mirror) mirror(evt *v1.CDCEvent) {
	if evt.GetOperation() != v1.LitetableOperation_WRITE || evt.GetTombstone() {
		return
	}

	ts := evt.GetTimestampUnix()
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	e := &event.Event{
		Timestamp: ts,
		Host:      m.target,
		Attrs: map[string][]byte{
			m.attrPrefix: []byte(evt.GetRowKey()),
			m.attrPrefix + evt.GetFamily() + ":" + evt.GetQualifier(): evt.GetValue(),
		},
	}

	if err := m.sink.Append(e); err != nil {
		log.Error().Err(err).Str("rowKey", evt.GetRowKey()).
			Msg("dropping mirrored event")
	}
}

// Stop cancels the subscription and closes the connection.
func (m *Mirror) Stop() error {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		err := m.conn.Close()
		m.conn = nil
		return err
	}
	return nil
}

// Name identifies the mirror in lifecycle logs.
func (m *Mirror) Name() string {
	return "CDC Mirror"
}
