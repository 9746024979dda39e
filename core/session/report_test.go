package session

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/stretchr/testify/assert"
)

func joinAt(hour, min int) null.Time {
	// the calendar day of the join never matters, only its wall clock
	return null.TimeFrom(time.Date(2021, 3, 10, hour, min, 0, 0, time.UTC))
}

func Test_deriveStatus(t *testing.T) {
	lateTol := 10 * time.Minute

	tests := []struct {
		name string
		row  ReportRow
		want Status
	}{
		{
			name: "no join is a miss",
			row:  ReportRow{Time: "14:00:00"},
			want: StatusMissed,
		},
		{
			name: "on the minute",
			row:  ReportRow{Time: "14:00:00", JoinedAt: joinAt(14, 0)},
			want: StatusOnTime,
		},
		{
			name: "inside the tolerance",
			row:  ReportRow{Time: "14:00:00", JoinedAt: joinAt(14, 10)},
			want: StatusOnTime,
		},
		{
			name: "beyond the tolerance",
			row:  ReportRow{Time: "14:00:00", JoinedAt: joinAt(14, 11)},
			want: StatusLate,
		},
		{
			name: "early join",
			row:  ReportRow{Time: "14:00:00", JoinedAt: joinAt(13, 55)},
			want: StatusOnTime,
		},
		{
			name: "cancellation wins over a late join",
			row:  ReportRow{Time: "14:00:00", JoinedAt: joinAt(15, 0), Cancelled: true},
			want: StatusCancelled,
		},
		{
			name: "cancellation wins over a miss",
			row:  ReportRow{Time: "14:00:00", Cancelled: true},
			want: StatusCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveStatus(tt.row, lateTol))
		})
	}
}

func Test_renderReport(t *testing.T) {
	lateTol := 10 * time.Minute
	row := ReportRow{
		Date:          "2021-03-08",
		Time:          "14:00:00",
		ClassName:     "Algebra II",
		TeacherName:   "Mr Otieno",
		Subject:       "Mathematics",
		ClassroomName: "Room A",
		StudentName:   "Aisha",
		JoinedAt:      joinAt(14, 5),
	}

	t.Run("plain", func(t *testing.T) {
		got := renderReport(row, false, lateTol)
		assert.Equal(t, "08 March 2021", got.Date)
		assert.Equal(t, "14:00:00", got.Time)
		assert.Equal(t, "Algebra II", got.ClassName)
		assert.Equal(t, "Mr Otieno", got.Teacher)
		assert.Equal(t, "Mathematics", got.Subject)
		assert.Equal(t, "Room A", got.Classroom)
		assert.Equal(t, StatusOnTime, got.Status)
	})

	t.Run("with student name", func(t *testing.T) {
		got := renderReport(row, true, lateTol)
		assert.Equal(t, "Algebra II-Aisha", got.ClassName)
	})
}
