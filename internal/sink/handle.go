package sink

import (
	"bufio"
	"bytes"
	"net"

	"github.com/google/uuid"
	"github.com/litetable/litetable-sink/internal/event"
	"github.com/rs/zerolog/log"
)

// maxLineBytes caps one serialized event on the wire.
const maxLineBytes = 4 << 20

// Handle implements the receiver's handler interface, allowing the sink to
// consume events from incoming connections. Every line is one JSON event and
// gets an OK or ERROR line back, so a source can confirm delivery before it
// sends the next batch.
func (s *Sink) Handle(conn net.Conn) {
	connID := uuid.NewString()
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Str("conn", connID).Msg("error closing connection")
		}
	}()

	log.Debug().Str("conn", connID).Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("source connected")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		evt, err := event.Decode(line)
		if err != nil {
			s.respond(conn, connID, "ERROR: "+err.Error()+"\n")
			continue
		}

		if err := s.Append(evt); err != nil {
			s.respond(conn, connID, "ERROR: "+err.Error()+"\n")
			continue
		}

		s.respond(conn, connID, "OK\n")
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("conn", connID).Msg("source read failed")
	}
	log.Debug().Str("conn", connID).Msg("source disconnected")
}

func (s *Sink) respond(conn net.Conn, connID, msg string) {
	if _, err := conn.Write([]byte(msg)); err != nil {
		log.Warn().Err(err).Str("conn", connID).Msg("failed to write response")
	}
}
