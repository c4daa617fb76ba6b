package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrForbidden           = errors.New("not allowed to manage this resource")
	ErrAccountNotFound     = errors.New("account not found")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrDestinationExists   = errors.New("destination already exists")
	ErrSelfFollow          = errors.New("cannot follow yourself")
	ErrToggleConflict      = errors.New("concurrent update, please retry")
	ErrSearchQueryRequired = errors.New("search query is required")
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isTxConflict reports a transaction Postgres aborted because it raced
// another one; the caller may retry it as a whole.
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

type PageLimits struct {
	Default int
	Max     int
}

var defaultListLimits = PageLimits{Default: 20, Max: 100}

func (l PageLimits) normalize(page domain.Page) domain.Page {
	def, maxSize := l.Default, l.Max
	if def <= 0 {
		def = defaultListLimits.Default
	}
	if maxSize <= 0 {
		maxSize = defaultListLimits.Max
	}
	if page.Number <= 0 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = def
	}
	if page.Size > maxSize {
		page.Size = maxSize
	}
	return page
}
