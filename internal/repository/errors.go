package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the stores translate into domain errors
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, foreignKeyViolation)
}

func hasSQLState(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
