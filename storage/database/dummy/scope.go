package dummydb

import (
	"context"
	"sort"

	"github.com/convenientedu/portal/core/user"
)

type scopeRepository struct {
	db *DB
}

var _ user.ScopeRepository = (*scopeRepository)(nil) // interface compliance check

func NewScopeRepository(db *DB) user.ScopeRepository {
	return &scopeRepository{db: db}
}

func (repo *scopeRepository) StudentClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for crid, uids := range repo.db.members {
		if intsContain(uids, uid) {
			ids = append(ids, crid)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *scopeRepository) ParentClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for crid, uids := range repo.db.members {
		for _, studentID := range repo.db.guardians[uid] {
			if intsContain(uids, studentID) && !intsContain(ids, crid) {
				ids = append(ids, crid)
			}
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *scopeRepository) ManagerClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, room := range repo.db.classrooms {
		if room.ManagerID == uid {
			ids = append(ids, room.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *scopeRepository) TeacherClassroomIDs(ctx context.Context, uid int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, entry := range repo.db.entries {
		if entry.TeacherID == uid && !intsContain(ids, entry.ClassroomID) {
			ids = append(ids, entry.ClassroomID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *scopeRepository) AllClassroomIDs(ctx context.Context) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]int, 0, len(repo.db.classrooms))
	for id := range repo.db.classrooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (repo *scopeRepository) StudentsIn(ctx context.Context, classroomIDs []int) ([]user.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var members []user.Member
	seen := make(map[int]bool)
	for _, crid := range classroomIDs {
		for _, uid := range repo.db.members[crid] {
			usr, ok := repo.db.users[uid]
			if !ok || usr.Role != user.RoleStudent || seen[uid] {
				continue
			}
			seen[uid] = true
			members = append(members, user.Member{ID: usr.ID, Name: usr.Name})
		}
	}
	sortMembers(members)
	return members, nil
}

func (repo *scopeRepository) TeachersOf(ctx context.Context, classroomIDs []int) ([]user.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var members []user.Member
	seen := make(map[int]bool)
	for _, entry := range repo.db.entries {
		if !intsContain(classroomIDs, entry.ClassroomID) || seen[entry.TeacherID] {
			continue
		}
		usr, ok := repo.db.users[entry.TeacherID]
		if !ok {
			continue
		}
		seen[usr.ID] = true
		members = append(members, user.Member{ID: usr.ID, Name: usr.Name, Subject: usr.Subject})
	}
	sortMembers(members)
	return members, nil
}

func sortMembers(members []user.Member) {
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
}
