package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/convenientedu/portal/core/user"
)

type scopeRepository struct {
	db *sqlx.DB
}

var _ user.ScopeRepository = (*scopeRepository)(nil) // interface compliance check

func NewScopeRepository(db *sqlx.DB) user.ScopeRepository {
	return &scopeRepository{db: db}
}

func (repo *scopeRepository) StudentClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	var ids []int
	query := `SELECT classroom_id FROM classroom_member WHERE user_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, query, uid); err != nil {
		return nil, errors.Wrap(err, "listing student classrooms")
	}
	return ids, nil
}

func (repo *scopeRepository) ParentClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	var ids []int
	query := `
		SELECT DISTINCT cm.classroom_id
		FROM classroom_member cm
		INNER JOIN guardianship g ON g.student_id = cm.user_id
		WHERE g.parent_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, query, uid); err != nil {
		return nil, errors.Wrap(err, "listing parent classrooms")
	}
	return ids, nil
}

func (repo *scopeRepository) ManagerClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	var ids []int
	query := `SELECT id FROM classroom WHERE manager_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, query, uid); err != nil {
		return nil, errors.Wrap(err, "listing managed classrooms")
	}
	return ids, nil
}

func (repo *scopeRepository) TeacherClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	var ids []int
	query := `SELECT DISTINCT classroom_id FROM timetable WHERE teacher_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, query, uid); err != nil {
		return nil, errors.Wrap(err, "listing taught classrooms")
	}
	return ids, nil
}

func (repo *scopeRepository) AllClassroomIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := repo.db.SelectContext(ctx, &ids, `SELECT id FROM classroom`); err != nil {
		return nil, errors.Wrap(err, "listing classrooms")
	}
	return ids, nil
}

func (repo *scopeRepository) StudentsIn(ctx context.Context, classroomIDs []int) ([]user.Member, error) {
	if len(classroomIDs) == 0 {
		return nil, nil
	}
	var members []user.Member
	query := `
		SELECT DISTINCT u.id, u.name, u.subject
		FROM app_user u
		INNER JOIN classroom_member cm ON cm.user_id = u.id
		WHERE cm.classroom_id = ANY($1) AND u.role = $2
		ORDER BY u.name`
	if err := repo.db.SelectContext(ctx, &members, query, pq.Array(classroomIDs), user.RoleStudent); err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	return members, nil
}

func (repo *scopeRepository) TeachersOf(ctx context.Context, classroomIDs []int) ([]user.Member, error) {
	if len(classroomIDs) == 0 {
		return nil, nil
	}
	var members []user.Member
	query := `
		SELECT DISTINCT u.id, u.name, u.subject
		FROM app_user u
		INNER JOIN timetable t ON t.teacher_id = u.id
		WHERE t.classroom_id = ANY($1)
		ORDER BY u.name`
	if err := repo.db.SelectContext(ctx, &members, query, pq.Array(classroomIDs)); err != nil {
		return nil, errors.Wrap(err, "listing teachers")
	}
	return members, nil
}
