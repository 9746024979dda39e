package dummydb

import (
	"context"

	"github.com/convenientedu/portal/core/credit"
)

type creditRepository struct {
	db *DB
}

var _ credit.Repository = (*creditRepository)(nil) // interface compliance check

func NewCreditRepository(db *DB) credit.Repository {
	return &creditRepository{db: db}
}

func (repo *creditRepository) BalanceFor(ctx context.Context, uid int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if balance, ok := repo.db.credits[uid]; ok {
		return balance, nil
	}
	// students fall back to their guardian's balance
	for parentID, studentIDs := range repo.db.guardians {
		if intsContain(studentIDs, uid) {
			return repo.db.credits[parentID], nil
		}
	}
	return 0, nil
}

func (repo *creditRepository) Debit(ctx context.Context, sponsorID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.credits[sponsorID] <= 0 {
		return credit.ErrInsufficientCredit
	}
	repo.db.credits[sponsorID]--
	return nil
}

func (repo *creditRepository) Credit(ctx context.Context, sponsorID, amount int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.credits[sponsorID] += amount
	return nil
}
