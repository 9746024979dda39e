package session

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/convenientedu/portal/core/user"
)

type (
	// Occurrence is one materialized class meeting: a timetable entry
	// projected onto a concrete calendar date.
	Occurrence struct {
		ID            int      `json:"id" db:"id"`
		TimetableID   int      `json:"timetable_id" db:"timetable_id"`
		ClassroomID   int      `json:"classroom_id" db:"classroom_id"`
		Date          string   `json:"date" db:"class_date"` // YYYY-MM-DD
		Time          string   `json:"time" db:"class_time"` // HH:MM[:SS]
		ClassName     string   `json:"class_name" db:"class_name"`
		TeacherID     int      `json:"teacher_id" db:"teacher_id"`
		TeacherName   string   `json:"teacher" db:"teacher_name"`
		ParentID      null.Int `json:"-" db:"parent_id"`
		Subject       string   `json:"subject" db:"subject"`
		ClassroomName string   `json:"classroom" db:"classroom_name"`
		Link          string   `json:"-" db:"join_link"`
		Cancelled     bool     `json:"cancelled" db:"cancelled"`
	}

	// Joining records that a user entered a class meeting. At most one per
	// (occurrence, user); replays confirm the existing row.
	Joining struct {
		OccurrenceID int       `json:"occurrence_id" db:"class_history_id"`
		UserID       int       `json:"user_id" db:"user_id"`
		Role         user.Role `json:"role" db:"role"`
		JoinedAt     time.Time `json:"joined_at" db:"joined_at"`
	}

	// Cancellation marks an occurrence as called off by its student.
	Cancellation struct {
		OccurrenceID int       `json:"occurrence_id" db:"class_history_id"`
		UserID       int       `json:"user_id" db:"user_id"`
		CancelledAt  time.Time `json:"cancelled_at" db:"cancelled_at"`
	}

	// TodaySession is an occurrence decorated with the capability tokens a
	// particular viewer may act with.
	TodaySession struct {
		Occurrence
		JoinToken   string `json:"join_token"`
		CancelToken string `json:"cancel_token,omitempty"`
	}
)
