package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-inserts rows with the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows into table. Must run inside a transaction.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	return t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// RowsOf converts records into COPY rows following the given column order,
// reading values through their db tags.
func RowsOf[T any](records []T, columns []string) [][]any {
	rows := make([][]any, 0, len(records))
	for i := range records {
		m := StructToMap(&records[i])
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = m[col]
		}
		rows = append(rows, row)
	}
	return rows
}
