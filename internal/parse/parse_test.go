package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordTime(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1:02.50", 62.5, false},
		{"0:58.11", 58.11, false},
		{"10:00.00", 600, false},
		{" 2:03.999 ", 123.999, false},
		{"garbage", 0, true},
		{"1:02:03", 0, true},
		{"", 0, true},
		{"x:10.00", 0, true},
		{"1:yy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := RecordTime(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestChallengeID(t *testing.T) {
	id, ok := ChallengeID("Dodo *12* Sprint")
	require.True(t, ok)
	require.Equal(t, 12, id)

	_, ok = ChallengeID("no id here")
	require.False(t, ok)

	_, ok = ChallengeID("*notanumber*")
	require.False(t, ok)
}

func TestRecordDate(t *testing.T) {
	got, ok := RecordDate("07/10/2025 18:58")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 10, 7, 18, 58, 0, 0, time.UTC), got)

	got, ok = RecordDate("25/12/2024")
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), got)

	_, ok = RecordDate("not a date")
	require.False(t, ok)
}

func TestCleanNickname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$f00Dodo$z racer", "Dodo racer"},
		{"$l[http://x.yz]link$l", "link"},
		{"$o$iSpeed", "Speed"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CleanNickname(tt.in))
	}
}

func TestInt(t *testing.T) {
	require.Equal(t, 30, Int(" 30 "))
	require.Equal(t, 0, Int("-"))
	require.Equal(t, 0, Int(""))
}
