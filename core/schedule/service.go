package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrSlotTaken         = errors.New("a session already exists for this classroom at this time")
	ErrClassroomNotFound = errors.New("classroom not found")
)

type (
	Repository interface {
		GetClassroom(ctx context.Context, id int) (Classroom, error)

		// CreateEntry inserts a timetable entry; a slot conflict yields ErrSlotTaken.
		CreateEntry(ctx context.Context, entry Entry) (Entry, error)

		// CreateSupportEntry inserts a timetable entry and debits one support
		// credit from the sponsor inside a single repeatable-read transaction.
		// Either both commit or both roll back.
		CreateSupportEntry(ctx context.Context, entry Entry, sponsorID int) (Entry, error)

		// MaterializeDay projects active entries matching the weekday or the
		// exact date into class history rows, confirming rows that already
		// exist instead of failing. Returns the number of rows inserted.
		MaterializeDay(ctx context.Context, date string, weekday int) (int, error)

		// FilterSessions lists sessions matching the visibility filter,
		// optionally pinned to one calendar day.
		FilterSessions(ctx context.Context, f user.TimetableFilter, day *Day) ([]Session, error)
	}

	// Day pins a listing to one calendar date. Recurring entries match on
	// its weekday, one-off entries on its date.
	Day struct {
		Date    string // YYYY-MM-DD
		Weekday int    // Monday=0
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ScheduleSession validates and inserts a new timetable entry. Scheduling
// into a SUPPORT classroom additionally debits one prepaid credit from the
// sponsoring parent; the insert and the debit share one transaction.
func (svc *Service) ScheduleSession(ctx context.Context, ns NewSession) (Entry, error) {
	if err := ns.Validate(); err != nil {
		return Entry{}, err
	}

	room, err := svc.repo.GetClassroom(ctx, ns.ClassroomID)
	if err != nil {
		return Entry{}, err
	}

	if room.IsSupport() {
		return svc.repo.CreateSupportEntry(ctx, ns.entry(), room.ParentID.Int)
	}
	return svc.repo.CreateEntry(ctx, ns.entry())
}

// MaterializeToday projects today's timetable entries into history rows.
// Safe to call repeatedly; already-materialized entries are confirmed, not
// duplicated. Concurrent runs are resolved by the storage uniqueness
// constraint, never by locking.
func (svc *Service) MaterializeToday(ctx context.Context) (int, error) {
	now := nowFunc().UTC()
	return svc.repo.MaterializeDay(ctx, core.ClassDate(now), core.ISOWeekday(now))
}

// RunMaterializer materializes immediately, then on every interval tick
// until ctx is cancelled.
func (svc *Service) RunMaterializer(ctx context.Context, interval time.Duration) {
	materialize := func() {
		n, err := svc.MaterializeToday(ctx)
		if err != nil {
			svc.log.Error(fmt.Sprintf("materializing today's sessions: %v", err), err)
			return
		}
		if n > 0 {
			svc.log.Info(fmt.Sprintf("materialized %d session(s)", n))
		}
	}

	materialize()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			materialize()
		}
	}
}

// ListFor lists the sessions visible to a scope. The today restriction is
// resolved here so listings and MaterializeToday read the same clock.
func (svc *Service) ListFor(ctx context.Context, scope user.Scope, todayOnly bool) ([]Session, error) {
	filter, err := scope.TimetableFilter(ctx)
	if err != nil {
		return nil, err
	}

	var day *Day
	if todayOnly {
		now := nowFunc().UTC()
		day = &Day{Date: core.ClassDate(now), Weekday: core.ISOWeekday(now)}
	}
	return svc.repo.FilterSessions(ctx, filter, day)
}
