package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by writes that matched no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// DuplicateTranslationError names the language whose translated value is already taken.
// It matches ErrDuplicate under errors.Is.
type DuplicateTranslationError struct {
	Lang string
}

func (e *DuplicateTranslationError) Error() string {
	return e.Lang + " translation: " + ErrDuplicate.Error()
}

func (e *DuplicateTranslationError) Unwrap() error { return ErrDuplicate }

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx runs fn inside a transaction and commits when it returns nil.
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// filterBuilder collects WHERE conditions and their positional args.
// Each %d verb in a condition is replaced by the placeholder number of the matching arg.
type filterBuilder struct {
	conditions []string
	args       []interface{}
}

func (b *filterBuilder) add(cond string, args ...interface{}) {
	nums := make([]interface{}, len(args))
	for i := range args {
		nums[i] = len(b.args) + i + 1
	}
	b.conditions = append(b.conditions, fmt.Sprintf(cond, nums...))
	b.args = append(b.args, args...)
}

func (b *filterBuilder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// limitOffset appends pagination args and returns the clause.
func (b *filterBuilder) limitOffset(limit, offset int) (string, []interface{}) {
	n := len(b.args)
	args := append(append([]interface{}{}, b.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// isUniqueViolation reports a 23505 error from postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
