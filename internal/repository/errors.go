package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrDuplicateKey 违反唯一约束，同时满足 errors.Is(err, ErrConstraintViolation)
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key", ErrConstraintViolation)
)

// postgres SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate 把驱动错误归类为仓储层错误，保留原始错误信息
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case pgNotNullViolation, pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return err
}

// IsDuplicate 判断是否为唯一键冲突
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateKey) }
