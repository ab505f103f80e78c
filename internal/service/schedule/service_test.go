package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTimeWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"regular window", "09:00", "18:00", false},
		{"end of day sentinel", "14:00", "24:00", false},
		{"inverted", "18:00", "09:00", true},
		{"equal", "09:00", "09:00", true},
		{"unpadded start hour", "9:00", "18:00", true},
		{"unpadded end hour", "09:00", "9:30", true},
		{"garbage", "morning", "evening", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTimeWindow(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}
