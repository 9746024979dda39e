package schedule

import (
	"github.com/volatiletech/null/v8"

	"github.com/convenientedu/portal/core"
)

// Classroom types
type ClassroomType string

const (
	ClassroomGeneral ClassroomType = "GENERAL"
	ClassroomSupport ClassroomType = "SUPPORT"
)

// Classroom holds the room a timetable entry is scheduled into. SUPPORT
// classrooms seat exactly one student and are sponsored by a parent.
type Classroom struct {
	ID          int           `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Type        ClassroomType `json:"class_type" db:"class_type"`
	MaxStudents int           `json:"max_students" db:"max_students"`
	JoinLink    string        `json:"join_link" db:"join_link"`
	ManagerID   int           `json:"manager_id" db:"manager_id"`
	ParentID    null.Int      `json:"parent_id" db:"parent_id"`
}

func (c Classroom) IsSupport() bool {
	return c.Type == ClassroomSupport
}

// Entry is one recurring (weekday set) or one-off (date set) timetable slot.
// Weekday and Date are mutually exclusive; weekday is ISO Monday=0..Sunday=6.
type Entry struct {
	ID          int         `json:"id" db:"id"`
	ClassName   string      `json:"class_name" db:"class_name"`
	Weekday     null.Int    `json:"weekday" db:"weekday"`
	Date        null.String `json:"date" db:"class_date"` // YYYY-MM-DD
	Time        string      `json:"time" db:"class_time"` // HH:MM[:SS]
	ClassroomID int         `json:"classroom_id" db:"classroom_id"`
	TeacherID   int         `json:"teacher_id" db:"teacher_id"`
	Active      bool        `json:"active" db:"active"`
}

// Session is an Entry joined with its display labels for listings.
type Session struct {
	Entry
	TeacherName   string        `json:"teacher" db:"teacher_name"`
	ClassroomName string        `json:"classroom" db:"classroom_name"`
	ClassType     ClassroomType `json:"classtype" db:"class_type"`
}

// NewSession contains information needed to schedule a session.
type NewSession struct {
	ClassName   string      `json:"class_name"`
	Time        string      `json:"time"`
	Weekday     null.Int    `json:"weekday"`
	Date        null.String `json:"date"`
	TeacherID   int         `json:"teacher_id"`
	ClassroomID int         `json:"classroom_id"`
	Active      bool        `json:"active"`
}

const maxClassNameLen = 27

// Validate checks fields in order and short-circuits on the first failure,
// each with its own message.
func (ns *NewSession) Validate() error {
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.Time = core.CleanString(ns.Time)

	fail := func(field, msg string) error {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
	}

	if ns.ClassName == "" {
		return fail("class_name", "class name is missing")
	}
	if len(ns.ClassName) > maxClassNameLen {
		return fail("class_name", "please shorten the length of the class name")
	}
	if !core.ValidClassTime(ns.Time) {
		return fail("time", "time must be in the format HH:MM or HH:MM:SS (24-hour format)")
	}
	if ns.Weekday.Valid && ns.Date.Valid {
		return fail("weekday", "either choose a date or a weekday, not both")
	}
	if !ns.Weekday.Valid && !ns.Date.Valid {
		return fail("weekday", "a weekday between 0 (Monday) and 6 (Sunday) or a date must be provided")
	}
	if ns.Weekday.Valid && (ns.Weekday.Int < 0 || ns.Weekday.Int > 6) {
		return fail("weekday", "weekday must be between 0 (Monday) and 6 (Sunday)")
	}
	if ns.Date.Valid && !core.ValidClassDate(ns.Date.String) {
		return fail("date", "date must be in the format YYYY-MM-DD")
	}
	if ns.TeacherID <= 0 {
		return fail("teacher_id", "teacher must be greater than 0")
	}
	if ns.ClassroomID <= 0 {
		return fail("classroom_id", "classroom must be greater than 0")
	}
	return nil
}

func (ns NewSession) entry() Entry {
	return Entry{
		ClassName:   ns.ClassName,
		Weekday:     ns.Weekday,
		Date:        ns.Date,
		Time:        ns.Time,
		ClassroomID: ns.ClassroomID,
		TeacherID:   ns.TeacherID,
		Active:      ns.Active,
	}
}
