package dummydb

import (
	"context"
	"sort"

	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/user"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) GetClassroom(ctx context.Context, id int) (schedule.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if room, ok := repo.db.classrooms[id]; ok {
		return *room, nil
	}
	return schedule.Classroom{}, schedule.ErrClassroomNotFound
}

// slotTaken mirrors the uniqueness index on (classroom, weekday/date, time).
// Callers must hold the db lock.
func (repo *scheduleRepository) slotTaken(entry schedule.Entry) bool {
	for _, e := range repo.db.entries {
		if e.ClassroomID != entry.ClassroomID || e.Time != entry.Time {
			continue
		}
		if e.Weekday.Valid != entry.Weekday.Valid || e.Date.Valid != entry.Date.Valid {
			continue
		}
		if e.Weekday.Valid && e.Weekday.Int != entry.Weekday.Int {
			continue
		}
		if e.Date.Valid && e.Date.String != entry.Date.String {
			continue
		}
		return true
	}
	return false
}

func (repo *scheduleRepository) insert(entry schedule.Entry) schedule.Entry {
	repo.db.entryPK++
	entry.ID = repo.db.entryPK
	repo.db.entries[entry.ID] = &entry
	return entry
}

func (repo *scheduleRepository) CreateEntry(ctx context.Context, entry schedule.Entry) (schedule.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.slotTaken(entry) {
		return schedule.Entry{}, schedule.ErrSlotTaken
	}
	return repo.insert(entry), nil
}

func (repo *scheduleRepository) CreateSupportEntry(ctx context.Context, entry schedule.Entry, sponsorID int) (schedule.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// both checks before either mutation, like a rolled-back transaction
	if repo.db.credits[sponsorID] <= 0 {
		return schedule.Entry{}, credit.ErrInsufficientCredit
	}
	if repo.slotTaken(entry) {
		return schedule.Entry{}, schedule.ErrSlotTaken
	}

	repo.db.credits[sponsorID]--
	return repo.insert(entry), nil
}

func (repo *scheduleRepository) MaterializeDay(ctx context.Context, date string, weekday int) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var count int
	for _, entry := range repo.db.entries {
		if !entry.Active {
			continue
		}
		if !(entry.Weekday.Valid && entry.Weekday.Int == weekday) &&
			!(entry.Date.Valid && entry.Date.String == date) {
			continue
		}
		if repo.materialized(entry.ID, date) {
			continue
		}
		repo.db.historyPK++
		repo.db.history[repo.db.historyPK] = &historyRow{
			ID:          repo.db.historyPK,
			TimetableID: entry.ID,
			Date:        date,
		}
		count++
	}
	return count, nil
}

func (repo *scheduleRepository) materialized(timetableID int, date string) bool {
	for _, h := range repo.db.history {
		if h.TimetableID == timetableID && h.Date == date {
			return true
		}
	}
	return false
}

func (repo *scheduleRepository) FilterSessions(ctx context.Context, f user.TimetableFilter, day *schedule.Day) ([]schedule.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []schedule.Session
	for _, entry := range repo.db.entries {
		if !entry.Active {
			continue
		}
		switch {
		case f.All:
		case f.TeacherID > 0:
			if entry.TeacherID != f.TeacherID {
				continue
			}
		default:
			if !intsContain(f.ClassroomIDs, entry.ClassroomID) {
				continue
			}
		}
		if day != nil &&
			!(entry.Weekday.Valid && entry.Weekday.Int == day.Weekday) &&
			!(entry.Date.Valid && entry.Date.String == day.Date) {
			continue
		}

		sess := schedule.Session{Entry: *entry}
		if teacher, ok := repo.db.users[entry.TeacherID]; ok {
			sess.TeacherName = teacher.Name
		}
		if room, ok := repo.db.classrooms[entry.ClassroomID]; ok {
			sess.ClassroomName = room.Name
			sess.ClassType = room.Type
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Time != sessions[j].Time {
			return sessions[i].Time < sessions[j].Time
		}
		return sessions[i].ClassName < sessions[j].ClassName
	})
	return sessions, nil
}
