package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// assignments accumulates "col = $n" pairs for a partial UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, value any) {
	a.args = append(a.args, value)
	a.cols = append(a.cols, fmt.Sprintf("%s = $%d", col, len(a.args)))
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// update renders the statement with the WHERE argument bound last.
func (a *assignments) update(table, whereCol string, whereArg any) (string, []any) {
	args := append(a.args, whereArg)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(a.cols, ", "), whereCol, len(args),
	)
	return query, args
}
