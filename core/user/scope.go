package user

import (
	"context"
	"errors"
)

var ErrUnknownRole = errors.New("unknown role")

type (
	// Member is a person visible inside a scope (a student or a teacher).
	Member struct {
		ID      int    `json:"id" db:"id"`
		Name    string `json:"name" db:"name"`
		Subject string `json:"subject,omitempty" db:"subject"`
	}

	// TimetableFilter restricts a timetable listing to what a scope may see.
	// Exactly one of the fields is meaningful: All for admins, TeacherID for
	// teachers, ClassroomIDs for everyone else.
	TimetableFilter struct {
		ClassroomIDs []int
		TeacherID    int
		All          bool
	}

	// Scope exposes what one user may see, with one implementation per role.
	Scope interface {
		ClassroomIDs(ctx context.Context) ([]int, error)
		Students(ctx context.Context) ([]Member, error)
		Teachers(ctx context.Context) ([]Member, error)
		TimetableFilter(ctx context.Context) (TimetableFilter, error)
	}

	// ScopeRepository provides the per-role visibility lookups.
	ScopeRepository interface {
		StudentClassroomIDs(ctx context.Context, uid int) ([]int, error)
		ParentClassroomIDs(ctx context.Context, uid int) ([]int, error)
		ManagerClassroomIDs(ctx context.Context, uid int) ([]int, error)
		TeacherClassroomIDs(ctx context.Context, uid int) ([]int, error)
		AllClassroomIDs(ctx context.Context) ([]int, error)
		StudentsIn(ctx context.Context, classroomIDs []int) ([]Member, error)
		TeachersOf(ctx context.Context, classroomIDs []int) ([]Member, error)
	}

	Resolver struct {
		repo ScopeRepository
	}
)

func NewResolver(repo ScopeRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the Scope implementation for the actor's role.
func (r *Resolver) Resolve(actor Actor) (Scope, error) {
	switch actor.Role {
	case RoleStudent:
		return studentScope{repo: r.repo, uid: actor.ID}, nil
	case RoleTeacher:
		return teacherScope{repo: r.repo, uid: actor.ID}, nil
	case RoleParent:
		return parentScope{repo: r.repo, uid: actor.ID}, nil
	case RoleManager:
		return managerScope{repo: r.repo, uid: actor.ID}, nil
	case RoleAdmin:
		return adminScope{repo: r.repo}, nil
	}
	return nil, ErrUnknownRole
}

type studentScope struct {
	repo ScopeRepository
	uid  int
}

func (s studentScope) ClassroomIDs(ctx context.Context) ([]int, error) {
	return s.repo.StudentClassroomIDs(ctx, s.uid)
}

func (s studentScope) Students(ctx context.Context) ([]Member, error) {
	return nil, nil // students see no directory
}

func (s studentScope) Teachers(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.TeachersOf(ctx, ids)
}

func (s studentScope) TimetableFilter(ctx context.Context) (TimetableFilter, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return TimetableFilter{}, err
	}
	return TimetableFilter{ClassroomIDs: ids}, nil
}

type teacherScope struct {
	repo ScopeRepository
	uid  int
}

func (s teacherScope) ClassroomIDs(ctx context.Context) ([]int, error) {
	return s.repo.TeacherClassroomIDs(ctx, s.uid)
}

func (s teacherScope) Students(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.StudentsIn(ctx, ids)
}

func (s teacherScope) Teachers(ctx context.Context) ([]Member, error) {
	return nil, nil
}

func (s teacherScope) TimetableFilter(ctx context.Context) (TimetableFilter, error) {
	// teachers follow their own sessions, not whole classrooms
	return TimetableFilter{TeacherID: s.uid}, nil
}

type parentScope struct {
	repo ScopeRepository
	uid  int
}

func (s parentScope) ClassroomIDs(ctx context.Context) ([]int, error) {
	return s.repo.ParentClassroomIDs(ctx, s.uid)
}

func (s parentScope) Students(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.StudentsIn(ctx, ids)
}

func (s parentScope) Teachers(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.TeachersOf(ctx, ids)
}

func (s parentScope) TimetableFilter(ctx context.Context) (TimetableFilter, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return TimetableFilter{}, err
	}
	return TimetableFilter{ClassroomIDs: ids}, nil
}

type managerScope struct {
	repo ScopeRepository
	uid  int
}

func (s managerScope) ClassroomIDs(ctx context.Context) ([]int, error) {
	return s.repo.ManagerClassroomIDs(ctx, s.uid)
}

func (s managerScope) Students(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.StudentsIn(ctx, ids)
}

func (s managerScope) Teachers(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.TeachersOf(ctx, ids)
}

func (s managerScope) TimetableFilter(ctx context.Context) (TimetableFilter, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return TimetableFilter{}, err
	}
	return TimetableFilter{ClassroomIDs: ids}, nil
}

type adminScope struct {
	repo ScopeRepository
}

func (s adminScope) ClassroomIDs(ctx context.Context) ([]int, error) {
	return s.repo.AllClassroomIDs(ctx)
}

func (s adminScope) Students(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.StudentsIn(ctx, ids)
}

func (s adminScope) Teachers(ctx context.Context) ([]Member, error) {
	ids, err := s.ClassroomIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.TeachersOf(ctx, ids)
}

func (s adminScope) TimetableFilter(ctx context.Context) (TimetableFilter, error) {
	return TimetableFilter{All: true}, nil
}
