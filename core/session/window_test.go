package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_withinWindow(t *testing.T) {
	pastTol := 50 * time.Minute
	futureTol := 10 * time.Minute

	at := func(hour, min int) time.Time {
		return time.Date(2021, 3, 8, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		classTime string
		now       time.Time
		want      bool
		wantErr   bool
	}{
		{name: "on the minute", classTime: "14:00:00", now: at(14, 0), want: true},
		{name: "45 min in", classTime: "14:00:00", now: at(14, 45), want: true},
		{name: "at past bound", classTime: "14:00:00", now: at(14, 50), want: true},
		{name: "past bound exceeded", classTime: "14:00:00", now: at(14, 51), want: false},
		{name: "9 min early", classTime: "14:00:00", now: at(13, 51), want: true},
		{name: "at future bound", classTime: "14:00:00", now: at(13, 50), want: true},
		{name: "11 min early", classTime: "14:00:00", now: at(13, 49), want: false},
		{name: "short time format", classTime: "09:30", now: at(9, 35), want: true},
		{name: "seconds ignored", classTime: "14:00:30", now: at(14, 50), want: true},
		{name: "malformed time", classTime: "2pm", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withinWindow(tt.classTime, tt.now, pastTol, futureTol)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
