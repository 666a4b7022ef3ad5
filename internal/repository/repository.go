package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres class 23505: unique_violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether the error is a store-level unique
// constraint rejection. Application-level uniqueness checks are only a
// fast path; the unique index is the real guarantee, and a write that
// loses the race surfaces here.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode
}
