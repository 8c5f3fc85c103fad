package sink

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/litetable/litetable-sink/internal/event"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func writeEventLine(req *require.Assertions, conn net.Conn, e *event.Event) {
	b, err := json.Marshal(e)
	req.NoError(err)
	_, err = conn.Write(append(b, '\n'))
	req.NoError(err)
}

func TestSink_Handle(t *testing.T) {
	t.Run("events are acknowledged line by line", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockWriter := NewMockstoreWriter(ctrl)
		mockWriter.EXPECT().Open().Return(nil)
		mockWriter.EXPECT().Submit(&RowWrite{
			RowKey: []byte("row1"),
			Cells: []Cell{
				{Family: "user", Qualifier: "name", Value: []byte("alice")},
			},
		}).Return(nil)

		s, err := New(&Config{AttrPrefix: DefaultAttrPrefix, Writer: mockWriter})
		req.NoError(err)
		req.NoError(s.Open())

		srvConn, cliConn := net.Pipe()
		done := make(chan struct{})
		go func() {
			s.Handle(srvConn)
			close(done)
		}()

		reader := bufio.NewReader(cliConn)

		// A well-formed event lands in the writer.
		writeEventLine(req, cliConn, &event.Event{
			Timestamp: 7,
			Host:      "h",
			Attrs: map[string][]byte{
				"2hb_":          []byte("row1"),
				"2hb_user:name": []byte("alice"),
			},
		})
		resp, err := reader.ReadString('\n')
		req.NoError(err)
		req.Equal("OK\n", resp)

		// A malformed line is rejected without dropping the connection.
		_, err = cliConn.Write([]byte("{not json\n"))
		req.NoError(err)
		resp, err = reader.ReadString('\n')
		req.NoError(err)
		req.True(strings.HasPrefix(resp, "ERROR: "), resp)

		// An event without a row key is dropped, not failed.
		writeEventLine(req, cliConn, &event.Event{
			Timestamp: 7,
			Attrs:     map[string][]byte{"user:name": []byte("alice")},
		})
		resp, err = reader.ReadString('\n')
		req.NoError(err)
		req.Equal("OK\n", resp)

		req.NoError(cliConn.Close())
		<-done
	})

	t.Run("writer failures are reported to the source", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockWriter := NewMockstoreWriter(ctrl)
		mockWriter.EXPECT().Open().Return(nil)
		mockWriter.EXPECT().Submit(gomock.Any()).Return(errors.New("store down"))

		s, err := New(&Config{AttrPrefix: DefaultAttrPrefix, Writer: mockWriter})
		req.NoError(err)
		req.NoError(s.Open())

		srvConn, cliConn := net.Pipe()
		done := make(chan struct{})
		go func() {
			s.Handle(srvConn)
			close(done)
		}()

		reader := bufio.NewReader(cliConn)
		writeEventLine(req, cliConn, &event.Event{
			Timestamp: 7,
			Attrs: map[string][]byte{
				"2hb_":          []byte("row1"),
				"2hb_user:name": []byte("alice"),
			},
		})
		resp, err := reader.ReadString('\n')
		req.NoError(err)
		req.Equal("ERROR: store down\n", resp)

		req.NoError(cliConn.Close())
		<-done
	})

	t.Run("a closed sink rejects every event", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		s, err := New(&Config{AttrPrefix: DefaultAttrPrefix, Writer: NewMockstoreWriter(ctrl)})
		req.NoError(err)

		srvConn, cliConn := net.Pipe()
		done := make(chan struct{})
		go func() {
			s.Handle(srvConn)
			close(done)
		}()

		reader := bufio.NewReader(cliConn)
		writeEventLine(req, cliConn, &event.Event{
			Timestamp: 7,
			Attrs:     map[string][]byte{"2hb_": []byte("row1")},
		})
		resp, err := reader.ReadString('\n')
		req.NoError(err)
		req.Equal("ERROR: sink is not open\n", resp)

		req.NoError(cliConn.Close())
		<-done
	})
}
