package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input       string
		want        Priority
		expectedErr bool
	}{
		"empty string is unset": {
			input: "",
			want:  PriorityUnset,
		},
		"uppercase label": {
			input: "ERROR",
			want:  PriorityError,
		},
		"lowercase label": {
			input: "warn",
			want:  PriorityWarn,
		},
		"mixed case label": {
			input: "Info",
			want:  PriorityInfo,
		},
		"unknown label": {
			input:       "SHOUTING",
			expectedErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			got, err := ParsePriority(tc.input)
			if tc.expectedErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tc.want, got)
		})
	}
}

func TestPriority_String(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	req.Equal("TRACE", PriorityTrace.String())
	req.Equal("DEBUG", PriorityDebug.String())
	req.Equal("INFO", PriorityInfo.String())
	req.Equal("WARN", PriorityWarn.String())
	req.Equal("ERROR", PriorityError.String())
	req.Equal("FATAL", PriorityFatal.String())
	req.Equal("", PriorityUnset.String())
}

func TestPriority_JSON(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	b, err := json.Marshal(PriorityFatal)
	req.NoError(err)
	req.Equal(`"FATAL"`, string(b))

	var p Priority
	req.NoError(json.Unmarshal([]byte(`"debug"`), &p))
	req.Equal(PriorityDebug, p)

	req.Error(json.Unmarshal([]byte(`"LOUD"`), &p))
	req.Error(json.Unmarshal([]byte(`42`), &p))
}
