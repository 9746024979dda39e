package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/user"
	dummydb "github.com/convenientedu/portal/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = (*nopLogger)(nil)

func newTestService(t *testing.T) (*schedule.Service, *dummydb.DB) {
	t.Helper()
	db, err := dummydb.Open()
	assert.NoError(t, err)
	return schedule.NewService(dummydb.NewScheduleRepository(db), nopLogger{}), db
}

func newSession(classroomID int) schedule.NewSession {
	return schedule.NewSession{
		ClassName:   "Algebra II",
		Time:        "14:00:00",
		Weekday:     null.IntFrom(0), // Monday
		TeacherID:   1,
		ClassroomID: classroomID,
		Active:      true,
	}
}

func TestService_ScheduleSession(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts into a general classroom", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

		entry, err := svc.ScheduleSession(ctx, newSession(room.ID))
		assert.NoError(t, err)
		assert.NotZero(t, entry.ID)
	})

	t.Run("same slot twice conflicts", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

		_, err := svc.ScheduleSession(ctx, newSession(room.ID))
		assert.NoError(t, err)

		_, err = svc.ScheduleSession(ctx, newSession(room.ID))
		assert.Equal(t, schedule.ErrSlotTaken, err)
	})

	t.Run("same time on another weekday is fine", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

		_, err := svc.ScheduleSession(ctx, newSession(room.ID))
		assert.NoError(t, err)

		ns := newSession(room.ID)
		ns.Weekday = null.IntFrom(2)
		_, err = svc.ScheduleSession(ctx, ns)
		assert.NoError(t, err)
	})

	t.Run("unknown classroom", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.ScheduleSession(ctx, newSession(404))
		assert.Equal(t, schedule.ErrClassroomNotFound, err)
	})

	t.Run("validation", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

		tests := []struct {
			name  string
			tweak func(*schedule.NewSession)
		}{
			{"missing class name", func(ns *schedule.NewSession) { ns.ClassName = "" }},
			{"class name too long", func(ns *schedule.NewSession) { ns.ClassName = "An Unreasonably Long Class Name" }},
			{"malformed time", func(ns *schedule.NewSession) { ns.Time = "2pm" }},
			{"both weekday and date", func(ns *schedule.NewSession) { ns.Date = null.StringFrom("2021-03-08") }},
			{"neither weekday nor date", func(ns *schedule.NewSession) { ns.Weekday = null.Int{} }},
			{"weekday out of range", func(ns *schedule.NewSession) { ns.Weekday = null.IntFrom(7) }},
			{"malformed date", func(ns *schedule.NewSession) { ns.Weekday = null.Int{}; ns.Date = null.StringFrom("03/08/2021") }},
			{"missing teacher", func(ns *schedule.NewSession) { ns.TeacherID = 0 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ns := newSession(room.ID)
				tt.tweak(&ns)
				_, err := svc.ScheduleSession(ctx, ns)
				assert.IsType(t, &core.ValidationError{}, err)
			})
		}
	})
}

func TestService_ScheduleSession_support(t *testing.T) {
	ctx := context.Background()

	t.Run("debits one credit", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{
			Name: "1:1 Aisha", Type: schedule.ClassroomSupport, MaxStudents: 1,
			ManagerID: 9, ParentID: null.IntFrom(5),
		})
		db.SetCredit(5, 3)

		_, err := svc.ScheduleSession(ctx, newSession(room.ID))
		assert.NoError(t, err)

		balance, err := dummydb.NewCreditRepository(db).BalanceFor(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, 2, balance)
	})

	t.Run("empty balance blocks the insert", func(t *testing.T) {
		svc, db := newTestService(t)
		room := db.SeedClassroom(schedule.Classroom{
			Name: "1:1 Aisha", Type: schedule.ClassroomSupport, MaxStudents: 1,
			ManagerID: 9, ParentID: null.IntFrom(5),
		})
		db.SetCredit(5, 0)

		_, err := svc.ScheduleSession(ctx, newSession(room.ID))
		assert.Equal(t, credit.ErrInsufficientCredit, err)

		// nothing was scheduled
		sessions, err := dummydb.NewScheduleRepository(db).FilterSessions(ctx, user.TimetableFilter{All: true}, nil)
		assert.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func TestService_MaterializeToday(t *testing.T) {
	ctx := context.Background()

	// 2021-03-08 is a Monday
	restore := schedule.SetNowFunc(func() time.Time {
		return time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC)
	})
	defer restore()

	svc, db := newTestService(t)
	room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

	// one recurring Monday entry, one dated entry for today, one for tomorrow
	_, err := svc.ScheduleSession(ctx, newSession(room.ID))
	assert.NoError(t, err)

	dated := newSession(room.ID)
	dated.Weekday, dated.Date, dated.Time = null.Int{}, null.StringFrom("2021-03-08"), "16:00:00"
	_, err = svc.ScheduleSession(ctx, dated)
	assert.NoError(t, err)

	tomorrow := newSession(room.ID)
	tomorrow.Weekday, tomorrow.Date, tomorrow.Time = null.Int{}, null.StringFrom("2021-03-09"), "16:00:00"
	_, err = svc.ScheduleSession(ctx, tomorrow)
	assert.NoError(t, err)

	n, err := svc.MaterializeToday(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	// repeat run confirms instead of duplicating
	n, err = svc.MaterializeToday(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestService_ListFor_today(t *testing.T) {
	ctx := context.Background()

	// 2021-03-08 is a Monday
	restore := schedule.SetNowFunc(func() time.Time {
		return time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC)
	})
	defer restore()

	svc, db := newTestService(t)
	room := db.SeedClassroom(schedule.Classroom{Name: "Room A", Type: schedule.ClassroomGeneral, ManagerID: 9})

	// recurring Monday and Tuesday entries, plus dated entries for today
	// and tomorrow; only the Monday and today ones may list
	_, err := svc.ScheduleSession(ctx, newSession(room.ID))
	assert.NoError(t, err)

	tuesday := newSession(room.ID)
	tuesday.ClassName, tuesday.Weekday = "History", null.IntFrom(1)
	_, err = svc.ScheduleSession(ctx, tuesday)
	assert.NoError(t, err)

	dated := newSession(room.ID)
	dated.ClassName, dated.Time = "Physics", "16:00:00"
	dated.Weekday, dated.Date = null.Int{}, null.StringFrom("2021-03-08")
	_, err = svc.ScheduleSession(ctx, dated)
	assert.NoError(t, err)

	tomorrow := newSession(room.ID)
	tomorrow.ClassName, tomorrow.Time = "Chemistry", "16:00:00"
	tomorrow.Weekday, tomorrow.Date = null.Int{}, null.StringFrom("2021-03-09")
	_, err = svc.ScheduleSession(ctx, tomorrow)
	assert.NoError(t, err)

	scope, err := user.NewResolver(dummydb.NewScopeRepository(db)).Resolve(user.Actor{ID: 1, Role: user.RoleAdmin})
	assert.NoError(t, err)

	sessions, err := svc.ListFor(ctx, scope, true /* todayOnly */)
	assert.NoError(t, err)
	if assert.Len(t, sessions, 2) {
		assert.Equal(t, "Algebra II", sessions[0].ClassName)
		assert.Equal(t, "Physics", sessions[1].ClassName)
	}
}
