package dummydb

import (
	"sync"

	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
)

type (
	// DB is an in-memory stand-in for the real database, used by tests and
	// local tinkering. One lock guards all tables so cross-table operations
	// stay atomic the way their SQL counterparts are.
	DB struct {
		sync.RWMutex

		users      map[int]*user.User
		classrooms map[int]*schedule.Classroom
		members    map[int][]int // classroom id -> member user ids
		guardians  map[int][]int // parent id -> student ids
		entries    map[int]*schedule.Entry
		history    map[int]*historyRow
		joinings   map[joinKey]*session.Joining
		canceled   map[int]*session.Cancellation // history id -> cancellation
		credits    map[int]int                   // parent id -> balance

		userPK, classroomPK, entryPK, historyPK int
	}

	historyRow struct {
		ID          int
		TimetableID int
		Date        string
	}

	joinKey struct {
		historyID int
		userID    int
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:      make(map[int]*user.User),
		classrooms: make(map[int]*schedule.Classroom),
		members:    make(map[int][]int),
		guardians:  make(map[int][]int),
		entries:    make(map[int]*schedule.Entry),
		history:    make(map[int]*historyRow),
		joinings:   make(map[joinKey]*session.Joining),
		canceled:   make(map[int]*session.Cancellation),
		credits:    make(map[int]int),
	}
	return db, nil
}

// SeedClassroom registers a classroom and returns it with its id set.
func (db *DB) SeedClassroom(room schedule.Classroom) schedule.Classroom {
	db.Lock()
	defer db.Unlock()

	db.classroomPK++
	room.ID = db.classroomPK
	db.classrooms[room.ID] = &room
	return room
}

// AddMember enrolls a user into a classroom.
func (db *DB) AddMember(classroomID, userID int) {
	db.Lock()
	defer db.Unlock()
	db.members[classroomID] = append(db.members[classroomID], userID)
}

// AddGuardian links a parent to a student.
func (db *DB) AddGuardian(parentID, studentID int) {
	db.Lock()
	defer db.Unlock()
	db.guardians[parentID] = append(db.guardians[parentID], studentID)
}

// SetCredit pins a parent's support credit balance.
func (db *DB) SetCredit(parentID, balance int) {
	db.Lock()
	defer db.Unlock()
	db.credits[parentID] = balance
}

func intsContain(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
