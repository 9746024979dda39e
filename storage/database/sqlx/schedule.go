package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/user"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) GetClassroom(ctx context.Context, id int) (schedule.Classroom, error) {
	var room schedule.Classroom
	query := `SELECT id, name, class_type, max_students, join_link, manager_id, parent_id FROM classroom WHERE id = $1`
	err := repo.db.GetContext(ctx, &room, query, id)
	if err == sql.ErrNoRows {
		return schedule.Classroom{}, schedule.ErrClassroomNotFound
	}
	if err != nil {
		return schedule.Classroom{}, errors.Wrap(err, "getting classroom")
	}
	return room, nil
}

const insertEntry = `
	INSERT INTO timetable (class_name, weekday, class_date, class_time, classroom_id, teacher_id, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

func (repo *scheduleRepository) CreateEntry(ctx context.Context, entry schedule.Entry) (schedule.Entry, error) {
	err := repo.db.QueryRowxContext(ctx, insertEntry,
		entry.ClassName, entry.Weekday, entry.Date, entry.Time,
		entry.ClassroomID, entry.TeacherID, entry.Active,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err, "timetable_classroom_slot_key") {
			return schedule.Entry{}, schedule.ErrSlotTaken
		}
		return schedule.Entry{}, errors.Wrap(err, "inserting timetable entry")
	}
	return entry, nil
}

// CreateSupportEntry inserts the entry and debits one credit from the
// sponsoring parent in one repeatable-read transaction. The debit is a
// single guarded update, so two racing inserts against a one-credit balance
// cannot both commit.
func (repo *scheduleRepository) CreateSupportEntry(ctx context.Context, entry schedule.Entry, sponsorID int) (schedule.Entry, error) {
	tx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return schedule.Entry{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE support_credit SET balance = balance - 1 WHERE parent_id = $1 AND balance > 0`,
		sponsorID,
	)
	if err != nil {
		return schedule.Entry{}, errors.Wrap(err, "debiting support credit")
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return schedule.Entry{}, credit.ErrInsufficientCredit
	}

	err = tx.QueryRowxContext(ctx, insertEntry,
		entry.ClassName, entry.Weekday, entry.Date, entry.Time,
		entry.ClassroomID, entry.TeacherID, entry.Active,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err, "timetable_classroom_slot_key") {
			return schedule.Entry{}, schedule.ErrSlotTaken
		}
		return schedule.Entry{}, errors.Wrap(err, "inserting timetable entry")
	}

	if err := tx.Commit(); err != nil {
		return schedule.Entry{}, errors.Wrap(err, "committing transaction")
	}
	return entry, nil
}

// MaterializeDay projects matching active entries into history rows for the
// date. The uniqueness constraint absorbs entries already materialized, by
// this run or a concurrent one, so repeats insert nothing and report no
// error.
func (repo *scheduleRepository) MaterializeDay(ctx context.Context, date string, weekday int) (int, error) {
	query := `
		INSERT INTO class_history (timetable_id, class_date)
		SELECT id, $1::date
		FROM timetable
		WHERE active AND (weekday = $2 OR class_date = $1::date)
		ON CONFLICT ON CONSTRAINT class_history_timetable_date_key DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query, date, weekday)
	if err != nil {
		return 0, errors.Wrap(err, "materializing class history")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "materializing class history")
	}
	return int(n), nil
}

func (repo *scheduleRepository) FilterSessions(ctx context.Context, f user.TimetableFilter, day *schedule.Day) ([]schedule.Session, error) {
	query := `
		SELECT t.id, t.class_name, t.weekday,
		       to_char(t.class_date, 'YYYY-MM-DD') AS class_date,
		       to_char(t.class_time, 'HH24:MI:SS') AS class_time,
		       t.classroom_id, t.teacher_id, t.active,
		       u.name AS teacher_name, c.name AS classroom_name, c.class_type
		FROM timetable t
		INNER JOIN app_user u ON u.id = t.teacher_id
		INNER JOIN classroom c ON c.id = t.classroom_id
		WHERE t.active`
	args := make([]interface{}, 0, 3)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case f.All:
		// no visibility restriction
	case f.TeacherID > 0:
		query += ` AND t.teacher_id = ` + arg(f.TeacherID)
	default:
		if len(f.ClassroomIDs) == 0 {
			return nil, nil
		}
		query += ` AND t.classroom_id = ANY(` + arg(pq.Array(f.ClassroomIDs)) + `)`
	}
	if day != nil {
		query += ` AND (t.weekday = ` + arg(day.Weekday) + ` OR t.class_date = ` + arg(day.Date) + `::date)`
	}
	query += ` ORDER BY t.class_time, t.class_name`

	var sessions []schedule.Session
	if err := repo.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing timetable")
	}
	return sessions, nil
}
