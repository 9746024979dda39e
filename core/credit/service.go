package credit

import (
	"context"
	"errors"

	"github.com/convenientedu/portal/core"
)

// ErrInsufficientCredit is returned when a debit is attempted against an
// empty balance. Nothing is mutated in that case.
var ErrInsufficientCredit = errors.New("there are no prepaid sessions left, please pay for sessions")

type (
	// Repository meters prepaid support-session credits per sponsoring parent.
	Repository interface {
		// BalanceFor reads the balance visible to a user: their own if they
		// sponsor one, or their parent's for students.
		BalanceFor(ctx context.Context, uid int) (int, error)

		// Debit decrements the sponsor's balance by exactly 1 as a single
		// guarded mutation; an empty balance yields ErrInsufficientCredit and
		// no change. Concurrent debits on the same sponsor never both succeed
		// when only one credit remains.
		Debit(ctx context.Context, sponsorID int) error

		// Credit adds amount to the sponsor's balance (payment integration).
		Credit(ctx context.Context, sponsorID, amount int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) BalanceFor(ctx context.Context, uid int) (int, error) {
	return svc.repo.BalanceFor(ctx, uid)
}

func (svc *Service) Debit(ctx context.Context, sponsorID int) error {
	return svc.repo.Debit(ctx, sponsorID)
}

func (svc *Service) Credit(ctx context.Context, sponsorID, amount int) error {
	if amount <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount must be greater than 0"})
	}
	return svc.repo.Credit(ctx, sponsorID, amount)
}
