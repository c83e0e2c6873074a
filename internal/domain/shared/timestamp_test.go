package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2025-03-04T10:20:30Z"`, time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-04T10:20:30.123456"`, time.Date(2025, 3, 4, 10, 20, 30, 123456000, time.UTC)},
		{`"2025-03-04 10:20:30"`, time.Date(2025, 3, 4, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-04"`, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time))
		})
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestamp_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		At Timestamp `json:"at"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":null}`, string(out))

	ts := NewTimestamp(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "02-01-2025", ts.DateString())
}

func TestParseTimestamp_DateTimeLocal(t *testing.T) {
	ts, err := ParseTimestamp("2025-03-04T09:30")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC).Equal(ts.Time))
}
