package event

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("full event", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		body := base64.StdEncoding.EncodeToString([]byte("hello"))
		rowKey := base64.StdEncoding.EncodeToString([]byte("row1"))
		raw := `{"body":"` + body + `","timestamp":1716910263000,"host":"web-01",` +
			`"priority":"INFO","attrs":{"2hb_":"` + rowKey + `"}}`

		got, err := Decode([]byte(raw))
		req.NoError(err)
		req.Equal([]byte("hello"), got.Body)
		req.Equal(int64(1716910263000), got.Timestamp)
		req.Equal("web-01", got.Host)
		req.Equal(PriorityInfo, got.Priority)
		req.Equal([]byte("row1"), got.Attrs["2hb_"])
	})

	t.Run("missing timestamp defaults to receive time", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		before := time.Now().UnixMilli()
		got, err := Decode([]byte(`{"host":"web-01"}`))
		after := time.Now().UnixMilli()

		req.NoError(err)
		req.GreaterOrEqual(got.Timestamp, before)
		req.LessOrEqual(got.Timestamp, after)
	})

	t.Run("missing priority stays unset", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		got, err := Decode([]byte(`{"host":"web-01","timestamp":5}`))
		req.NoError(err)
		req.Equal(PriorityUnset, got.Priority)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		got, err := Decode([]byte(`{"host":`))
		req.Error(err)
		req.Nil(got)
	})

	t.Run("unknown priority label", func(t *testing.T) {
		t.Parallel()
		req := require.New(t)

		got, err := Decode([]byte(`{"priority":"SHOUTING"}`))
		req.Error(err)
		req.Nil(got)
	})
}
