package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeString(t *testing.T) {
	ts := NewTimeString(time.Date(2026, 3, 15, 9, 5, 0, 0, time.UTC))
	assert.Equal(t, TimeString("09:05"), ts)
}

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("10:30")
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), ts)

	_, err = NewTimeStringFromString("25:00")
	assert.Error(t, err)

	_, err = NewTimeStringFromString("1030")
	assert.Error(t, err)

	// Без ведущего нуля лексикографический порядок ломается:
	// принимается только каноническая форма
	_, err = NewTimeStringFromString("9:00")
	assert.Error(t, err)
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		name    string
		in      TimeString
		want    int
		wantErr bool
	}{
		{"midnight", "00:00", 0, false},
		{"morning", "09:30", 570, false},
		{"end of day", "24:00", 1440, false},
		{"invalid", "9:3", 0, true},
		{"unpadded hour", "9:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Minutes()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMinutes(t *testing.T) {
	got, err := TimeString("10:00").AddMinutes(75)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:15"), got)

	// Ровно до конца дня
	got, err = TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	// За полночь
	_, err = TimeString("23:30").AddMinutes(45)
	assert.Error(t, err)
}

func TestBeforeAfter(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("18:00").IsAfter("09:30"))
	assert.True(t, TimeString("24:00").IsAfter("23:59"))
}
