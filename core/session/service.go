package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrOutOfWindow        = errors.New("cannot join the class at this time")
	ErrOccurrenceNotFound = errors.New("class session not found")
)

type (
	Repository interface {
		// TodayOccurrences lists the occurrences on date that the actor may
		// see, per their role's visibility.
		TodayOccurrences(ctx context.Context, actor user.Actor, date string) ([]Occurrence, error)

		GetOccurrence(ctx context.Context, id int) (Occurrence, error)

		// CreateJoining records a join. A repeat for the same (occurrence,
		// user) confirms the existing record and keeps its original time.
		CreateJoining(ctx context.Context, j Joining) error

		// CreateCancellation marks an occurrence cancelled. Repeats confirm.
		CreateCancellation(ctx context.Context, c Cancellation) error

		// ReportRows reads the (occurrence, student) attendance rows the
		// actor may see.
		ReportRows(ctx context.Context, actor user.Actor) ([]ReportRow, error)
	}

	Service struct {
		repo   Repository
		tokens *TokenService
		users  *user.Service
		mail   core.EmailService
		log    core.Logger

		from      mail.Address
		pastTol   time.Duration
		futureTol time.Duration
		lateTol   time.Duration
	}
)

func NewService(
	repo Repository,
	tokens *TokenService,
	users *user.Service,
	mailSvc core.EmailService,
	log core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		users:     users,
		mail:      mailSvc,
		log:       log,
		from:      mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail},
		pastTol:   conf.JoinPastTolerance,
		futureTol: conf.JoinFutureTolerance,
		lateTol:   conf.LateTolerance,
	}
}

// TodaySessions lists today's class meetings visible to the actor, each with
// the capability tokens the actor may act with. Join links never leave the
// server in the clear; they travel inside the signed join token only.
func (svc *Service) TodaySessions(ctx context.Context, actor user.Actor) ([]TodaySession, error) {
	today := core.ClassDate(nowFunc().UTC())
	occs, err := svc.repo.TodayOccurrences(ctx, actor, today)
	if err != nil {
		return nil, err
	}

	sessions := make([]TodaySession, 0, len(occs))
	for _, occ := range occs {
		ts := TodaySession{Occurrence: occ}
		if !occ.Cancelled {
			if ts.JoinToken, err = svc.tokens.Mint(CapabilityJoin, occ, actor.ID); err != nil {
				return nil, err
			}
			if actor.Role == user.RoleStudent {
				if ts.CancelToken, err = svc.tokens.Mint(CapabilityCancel, occ, actor.ID); err != nil {
					return nil, err
				}
			}
		}
		sessions = append(sessions, ts)
	}
	return sessions, nil
}

// Join redeems a join token and returns the classroom link. The join is
// recorded before the link is released; recording the same join twice keeps
// the first timestamp, so a reconnect never turns an on-time student late.
func (svc *Service) Join(ctx context.Context, tokenStr string) (string, error) {
	claims, err := svc.tokens.Redeem(tokenStr, CapabilityJoin)
	if err != nil {
		return "", err
	}

	ok, err := withinWindow(claims.Time, nowFunc().UTC(), svc.pastTol, svc.futureTol)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOutOfWindow
	}

	role, err := svc.users.RoleOf(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	j := Joining{
		OccurrenceID: claims.OccurrenceID,
		UserID:       claims.UserID,
		Role:         role,
		JoinedAt:     nowFunc().UTC(),
	}
	if err := svc.repo.CreateJoining(ctx, j); err != nil {
		return "", err
	}
	return claims.Link, nil
}

// Cancel redeems a cancel token and marks the occurrence cancelled. The
// teacher is notified by email on a best-effort basis; a notification
// failure never undoes the cancellation.
func (svc *Service) Cancel(ctx context.Context, tokenStr string) error {
	claims, err := svc.tokens.Redeem(tokenStr, CapabilityCancel)
	if err != nil {
		return err
	}

	c := Cancellation{
		OccurrenceID: claims.OccurrenceID,
		UserID:       claims.UserID,
		CancelledAt:  nowFunc().UTC(),
	}
	if err := svc.repo.CreateCancellation(ctx, c); err != nil {
		return err
	}

	svc.notifyTeacher(ctx, claims)
	return nil
}

func (svc *Service) notifyTeacher(ctx context.Context, claims capabilityClaims) {
	occ, err := svc.repo.GetOccurrence(ctx, claims.OccurrenceID)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("cancellation notice: looking up occurrence %d: %v", claims.OccurrenceID, err))
		return
	}
	teacher, err := svc.users.GetByID(ctx, occ.TeacherID)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("cancellation notice: looking up teacher %d: %v", occ.TeacherID, err))
		return
	}
	student, err := svc.users.GetByID(ctx, claims.UserID)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("cancellation notice: looking up student %d: %v", claims.UserID, err))
		return
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject: fmt.Sprintf("Class cancelled: %s on %s", occ.ClassName, occ.Date),
		BodyStr: fmt.Sprintf(
			"Hello %s,\n\n%s has cancelled the %s class of %s at %s.\n",
			teacher.Name, student.Name, occ.ClassName, occ.Date, occ.Time,
		),
	})
}

// Reports renders the attendance history visible to the actor. Viewers who
// oversee several students get each student's name folded into the class
// label so the lines stay tellable apart.
func (svc *Service) Reports(ctx context.Context, actor user.Actor) ([]Report, error) {
	rows, err := svc.repo.ReportRows(ctx, actor)
	if err != nil {
		return nil, err
	}

	withStudent := actor.Role == user.RoleManager || actor.Role == user.RoleAdmin
	reports := make([]Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, renderReport(row, withStudent, svc.lateTol))
	}
	return reports, nil
}
