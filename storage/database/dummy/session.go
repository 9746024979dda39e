package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

// occurrence assembles the denormalized view of one history row. Callers
// must hold the db lock.
func (repo *sessionRepository) occurrence(h *historyRow) (session.Occurrence, bool) {
	entry, ok := repo.db.entries[h.TimetableID]
	if !ok {
		return session.Occurrence{}, false
	}
	occ := session.Occurrence{
		ID:          h.ID,
		TimetableID: entry.ID,
		ClassroomID: entry.ClassroomID,
		Date:        h.Date,
		Time:        entry.Time,
		ClassName:   entry.ClassName,
		TeacherID:   entry.TeacherID,
	}
	if teacher, ok := repo.db.users[entry.TeacherID]; ok {
		occ.TeacherName = teacher.Name
		occ.Subject = teacher.Subject
	}
	if room, ok := repo.db.classrooms[entry.ClassroomID]; ok {
		occ.ClassroomName = room.Name
		occ.Link = room.JoinLink
		occ.ParentID = room.ParentID
	}
	_, occ.Cancelled = repo.db.canceled[h.ID]
	return occ, true
}

func (repo *sessionRepository) visible(actor user.Actor, occ session.Occurrence) bool {
	switch actor.Role {
	case user.RoleStudent:
		return intsContain(repo.db.members[occ.ClassroomID], actor.ID)
	case user.RoleTeacher:
		return occ.TeacherID == actor.ID
	case user.RoleParent:
		for _, studentID := range repo.db.guardians[actor.ID] {
			if intsContain(repo.db.members[occ.ClassroomID], studentID) {
				return true
			}
		}
		return false
	case user.RoleManager:
		room, ok := repo.db.classrooms[occ.ClassroomID]
		return ok && room.ManagerID == actor.ID
	case user.RoleAdmin:
		return true
	}
	return false
}

func (repo *sessionRepository) TodayOccurrences(ctx context.Context, actor user.Actor, date string) ([]session.Occurrence, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var occs []session.Occurrence
	for _, h := range repo.db.history {
		if h.Date != date {
			continue
		}
		occ, ok := repo.occurrence(h)
		if !ok || !repo.visible(actor, occ) {
			continue
		}
		occs = append(occs, occ)
	}
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].Time != occs[j].Time {
			return occs[i].Time < occs[j].Time
		}
		return occs[i].ClassName < occs[j].ClassName
	})
	return occs, nil
}

func (repo *sessionRepository) GetOccurrence(ctx context.Context, id int) (session.Occurrence, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if h, ok := repo.db.history[id]; ok {
		if occ, ok := repo.occurrence(h); ok {
			return occ, nil
		}
	}
	return session.Occurrence{}, session.ErrOccurrenceNotFound
}

func (repo *sessionRepository) CreateJoining(ctx context.Context, j session.Joining) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := joinKey{historyID: j.OccurrenceID, userID: j.UserID}
	if _, ok := repo.db.joinings[key]; ok {
		return nil // replay; the first record wins
	}
	repo.db.joinings[key] = &j
	return nil
}

func (repo *sessionRepository) CreateCancellation(ctx context.Context, c session.Cancellation) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.canceled[c.OccurrenceID]; ok {
		return nil
	}
	repo.db.canceled[c.OccurrenceID] = &c
	return nil
}

func (repo *sessionRepository) ReportRows(ctx context.Context, actor user.Actor) ([]session.ReportRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []session.ReportRow
	for _, h := range repo.db.history {
		entry, ok := repo.db.entries[h.TimetableID]
		if !ok {
			continue
		}
		for _, uid := range repo.db.members[entry.ClassroomID] {
			student, ok := repo.db.users[uid]
			if !ok || student.Role != user.RoleStudent {
				continue
			}
			if !repo.reportVisible(actor, entry, student.ID) {
				continue
			}

			row := session.ReportRow{
				OccurrenceID: h.ID,
				Date:         h.Date,
				Time:         entry.Time,
				ClassName:    entry.ClassName,
				StudentID:    student.ID,
				StudentName:  student.Name,
			}
			if teacher, ok := repo.db.users[entry.TeacherID]; ok {
				row.TeacherName = teacher.Name
				row.Subject = teacher.Subject
			}
			if room, ok := repo.db.classrooms[entry.ClassroomID]; ok {
				row.ClassroomName = room.Name
			}
			if j, ok := repo.db.joinings[joinKey{historyID: h.ID, userID: student.ID}]; ok {
				row.JoinedAt = null.TimeFrom(j.JoinedAt)
			}
			_, row.Cancelled = repo.db.canceled[h.ID]
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		if rows[i].Time != rows[j].Time {
			return rows[i].Time < rows[j].Time
		}
		return rows[i].StudentName < rows[j].StudentName
	})
	return rows, nil
}

func (repo *sessionRepository) reportVisible(actor user.Actor, entry *schedule.Entry, studentID int) bool {
	switch actor.Role {
	case user.RoleStudent:
		return studentID == actor.ID
	case user.RoleParent:
		return intsContain(repo.db.guardians[actor.ID], studentID)
	case user.RoleTeacher:
		return entry.TeacherID == actor.ID
	case user.RoleManager:
		room, ok := repo.db.classrooms[entry.ClassroomID]
		return ok && room.ManagerID == actor.ID
	case user.RoleAdmin:
		return true
	}
	return false
}
