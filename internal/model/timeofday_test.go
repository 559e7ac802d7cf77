package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 9 * 60, false},
		{"16:30", 16*60 + 30, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"oops", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", TimeOfDay(9*60+5).String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	// next-day effective ends wrap back to clock time
	assert.Equal(t, "07:00", (TimeOfDay(7*60) + MinutesPerDay).String())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(TimeOfDay(17 * 60))
	require.NoError(t, err)
	assert.Equal(t, `"17:00"`, string(raw))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"08:15"`), &parsed))
	assert.Equal(t, TimeOfDay(8*60+15), parsed)

	assert.Error(t, json.Unmarshal([]byte(`"late"`), &parsed))
}

func TestEffectiveEnd(t *testing.T) {
	day := ScheduleEntry{Start: 9 * 60, End: 17 * 60}
	assert.Equal(t, TimeOfDay(17*60), day.EffectiveEnd())

	night := ScheduleEntry{Start: 23 * 60, End: 7 * 60, EndNextDay: true}
	assert.Equal(t, TimeOfDay(7*60+MinutesPerDay), night.EffectiveEnd())
}
