package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
)

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{db: db}
}

const occurrenceColumns = `
	h.id, h.timetable_id, t.classroom_id,
	to_char(h.class_date, 'YYYY-MM-DD') AS class_date,
	to_char(t.class_time, 'HH24:MI:SS') AS class_time,
	t.class_name, t.teacher_id, tu.name AS teacher_name, tu.subject,
	c.parent_id, c.name AS classroom_name, c.join_link,
	(cc.class_history_id IS NOT NULL) AS cancelled`

const occurrenceFrom = `
	FROM class_history h
	INNER JOIN timetable t ON t.id = h.timetable_id
	INNER JOIN classroom c ON c.id = t.classroom_id
	INNER JOIN app_user tu ON tu.id = t.teacher_id
	LEFT JOIN class_canceled cc ON cc.class_history_id = h.id`

// visibleOccurrences restricts an occurrence query to what the actor's role
// may see. The restriction lives in SQL so listings stay one round trip.
func visibleOccurrences(actor user.Actor) (cond string, ok bool) {
	switch actor.Role {
	case user.RoleStudent:
		return `EXISTS (
			SELECT 1 FROM classroom_member cm
			WHERE cm.classroom_id = t.classroom_id AND cm.user_id = $2)`, true
	case user.RoleTeacher:
		return `t.teacher_id = $2`, true
	case user.RoleParent:
		return `EXISTS (
			SELECT 1 FROM classroom_member cm
			INNER JOIN guardianship g ON g.student_id = cm.user_id
			WHERE cm.classroom_id = t.classroom_id AND g.parent_id = $2)`, true
	case user.RoleManager:
		return `c.manager_id = $2`, true
	case user.RoleAdmin:
		return `TRUE`, false
	}
	return `FALSE`, false
}

func (repo *sessionRepository) TodayOccurrences(ctx context.Context, actor user.Actor, date string) ([]session.Occurrence, error) {
	cond, needsUID := visibleOccurrences(actor)
	query := `SELECT ` + occurrenceColumns + occurrenceFrom + `
		WHERE h.class_date = $1::date AND ` + cond + `
		ORDER BY t.class_time, t.class_name`

	args := []interface{}{date}
	if needsUID {
		args = append(args, actor.ID)
	}

	var occs []session.Occurrence
	if err := repo.db.SelectContext(ctx, &occs, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing today's sessions")
	}
	return occs, nil
}

func (repo *sessionRepository) GetOccurrence(ctx context.Context, id int) (session.Occurrence, error) {
	var occ session.Occurrence
	query := `SELECT ` + occurrenceColumns + occurrenceFrom + ` WHERE h.id = $1`
	err := repo.db.GetContext(ctx, &occ, query, id)
	if err == sql.ErrNoRows {
		return session.Occurrence{}, session.ErrOccurrenceNotFound
	}
	if err != nil {
		return session.Occurrence{}, errors.Wrap(err, "getting session")
	}
	return occ, nil
}

// CreateJoining records a join once per (occurrence, user). A replay hits
// the uniqueness constraint and is absorbed, keeping the first timestamp.
func (repo *sessionRepository) CreateJoining(ctx context.Context, j session.Joining) error {
	query := `
		INSERT INTO class_joining (class_history_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT class_joining_history_user_key DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, j.OccurrenceID, j.UserID, j.Role, j.JoinedAt); err != nil {
		return errors.Wrap(err, "recording class joining")
	}
	return nil
}

func (repo *sessionRepository) CreateCancellation(ctx context.Context, c session.Cancellation) error {
	query := `
		INSERT INTO class_canceled (class_history_id, user_id, cancelled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT class_canceled_history_key DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, c.OccurrenceID, c.UserID, c.CancelledAt); err != nil {
		return errors.Wrap(err, "recording class cancellation")
	}
	return nil
}

func (repo *sessionRepository) ReportRows(ctx context.Context, actor user.Actor) ([]session.ReportRow, error) {
	query := `
		SELECT h.id,
		       to_char(h.class_date, 'YYYY-MM-DD') AS class_date,
		       to_char(t.class_time, 'HH24:MI:SS') AS class_time,
		       t.class_name, tu.name AS teacher_name, tu.subject,
		       c.name AS classroom_name, s.id AS student_id, s.name AS student_name,
		       j.joined_at, (cc.class_history_id IS NOT NULL) AS cancelled
		FROM class_history h
		INNER JOIN timetable t ON t.id = h.timetable_id
		INNER JOIN classroom c ON c.id = t.classroom_id
		INNER JOIN app_user tu ON tu.id = t.teacher_id
		INNER JOIN classroom_member cm ON cm.classroom_id = t.classroom_id
		INNER JOIN app_user s ON s.id = cm.user_id AND s.role = $1
		LEFT JOIN class_joining j ON j.class_history_id = h.id AND j.user_id = s.id
		LEFT JOIN class_canceled cc ON cc.class_history_id = h.id`

	args := []interface{}{user.RoleStudent}
	switch actor.Role {
	case user.RoleStudent:
		query += ` WHERE s.id = $2`
		args = append(args, actor.ID)
	case user.RoleParent:
		query += ` WHERE EXISTS (
			SELECT 1 FROM guardianship g WHERE g.student_id = s.id AND g.parent_id = $2)`
		args = append(args, actor.ID)
	case user.RoleTeacher:
		query += ` WHERE t.teacher_id = $2`
		args = append(args, actor.ID)
	case user.RoleManager:
		query += ` WHERE c.manager_id = $2`
		args = append(args, actor.ID)
	case user.RoleAdmin:
		// everything
	default:
		return nil, user.ErrUnknownRole
	}
	query += ` ORDER BY h.class_date DESC, t.class_time, s.name`

	var rows []session.ReportRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing attendance rows")
	}
	return rows, nil
}
