package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres duplicate-key error on
// the named constraint. Duplicate keys are part of the contract here, not
// failures; callers decide what "already exists" means for them.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
