package session

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/convenientedu/portal/core"
)

// Status is the derived attendance outcome of a student for one occurrence.
type Status string

const (
	StatusCancelled Status = "CANCELLED"
	StatusLate      Status = "LATE"
	StatusOnTime    Status = "ON_TIME"
	StatusMissed    Status = "MISSED"
)

// reportDateLayout renders dates for report listings, e.g. "07 March 2021".
const reportDateLayout = "02 January 2006"

type (
	// ReportRow is one (occurrence, student) pair as read from storage,
	// before the attendance status is derived.
	ReportRow struct {
		OccurrenceID  int       `db:"id"`
		Date          string    `db:"class_date"`
		Time          string    `db:"class_time"`
		ClassName     string    `db:"class_name"`
		TeacherName   string    `db:"teacher_name"`
		Subject       string    `db:"subject"`
		ClassroomName string    `db:"classroom_name"`
		StudentID     int       `db:"student_id"`
		StudentName   string    `db:"student_name"`
		JoinedAt      null.Time `db:"joined_at"`
		Cancelled     bool      `db:"cancelled"`
	}

	// Report is one rendered attendance line.
	Report struct {
		Date      string `json:"date"`
		Time      string `json:"time"`
		ClassName string `json:"class_name"`
		Teacher   string `json:"teacher"`
		Subject   string `json:"subject"`
		Classroom string `json:"classroom"`
		Status    Status `json:"status"`
	}
)

// lateReference anchors time-of-day comparisons on a fixed calendar day so
// that only the wall clock minute matters, never the actual join date.
var lateReference = time.Date(2005, time.September, 11, 0, 0, 0, 0, time.UTC)

// deriveStatus folds a raw row into its attendance outcome. Cancellation
// wins over everything; a join later than lateTol past the scheduled minute
// counts as late; no join at all is a miss.
func deriveStatus(row ReportRow, lateTol time.Duration) Status {
	if row.Cancelled {
		return StatusCancelled
	}
	if !row.JoinedAt.Valid {
		return StatusMissed
	}

	hour, min, err := core.ParseClassTime(row.Time)
	if err != nil {
		// unparseable schedule times never flag a student late
		return StatusOnTime
	}
	scheduled := lateReference.Add(time.Duration(core.MinuteOfDay(hour, min)) * time.Minute)
	joined := lateReference.Add(time.Duration(core.MinuteOfDay(row.JoinedAt.Time.Hour(), row.JoinedAt.Time.Minute())) * time.Minute)

	if joined.Sub(scheduled) > lateTol {
		return StatusLate
	}
	return StatusOnTime
}

// renderReport turns a raw row into its display form. Viewers overseeing
// several students get the student's name folded into the class label.
func renderReport(row ReportRow, withStudent bool, lateTol time.Duration) Report {
	name := row.ClassName
	if withStudent && row.StudentName != "" {
		name += "-" + row.StudentName
	}

	date := row.Date
	if d, err := time.ParseInLocation(core.ClassDateLayout, row.Date, time.UTC); err == nil {
		date = d.Format(reportDateLayout)
	}

	return Report{
		Date:      date,
		Time:      row.Time,
		ClassName: name,
		Teacher:   row.TeacherName,
		Subject:   row.Subject,
		Classroom: row.ClassroomName,
		Status:    deriveStatus(row, lateTol),
	}
}
