package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/convenientedu/portal/core/credit"
)

type creditRepository struct {
	db *sqlx.DB
}

var _ credit.Repository = (*creditRepository)(nil) // interface compliance check

func NewCreditRepository(db *sqlx.DB) credit.Repository {
	return &creditRepository{db: db}
}

// BalanceFor reads the balance of the user's own ledger row, falling back to
// their guardian's for students. Users with no sponsor simply have 0.
func (repo *creditRepository) BalanceFor(ctx context.Context, uid int) (int, error) {
	var balance int
	err := repo.db.GetContext(ctx, &balance,
		`SELECT balance FROM support_credit WHERE parent_id = $1`, uid)
	if err == nil {
		return balance, nil
	}
	if err != sql.ErrNoRows {
		return 0, errors.Wrap(err, "getting credit balance")
	}

	query := `
		SELECT sc.balance
		FROM support_credit sc
		INNER JOIN guardianship g ON g.parent_id = sc.parent_id
		WHERE g.student_id = $1`
	err = repo.db.GetContext(ctx, &balance, query, uid)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "getting credit balance")
	}
	return balance, nil
}

func (repo *creditRepository) Debit(ctx context.Context, sponsorID int) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE support_credit SET balance = balance - 1 WHERE parent_id = $1 AND balance > 0`,
		sponsorID,
	)
	if err != nil {
		return errors.Wrap(err, "debiting support credit")
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return credit.ErrInsufficientCredit
	}
	return nil
}

func (repo *creditRepository) Credit(ctx context.Context, sponsorID, amount int) error {
	query := `
		INSERT INTO support_credit (parent_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (parent_id) DO UPDATE SET balance = support_credit.balance + EXCLUDED.balance`
	if _, err := repo.db.ExecContext(ctx, query, sponsorID, amount); err != nil {
		return errors.Wrap(err, "crediting support balance")
	}
	return nil
}
