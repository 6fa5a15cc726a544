package database

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func uniqueViolationError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr, true
	}
	return nil, false
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
