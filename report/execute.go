package report

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Execute runs a read-only query and returns its rows in column order. A
// positive limit wraps the query so at most limit rows are read. The
// transaction is always rolled back, and on PostgreSQL it is also marked
// read only.
func Execute(ctx context.Context, db *gorm.DB, query string, limit int) (*Result, error) {
	clean, err := EnsureReadOnly(query)
	if err != nil {
		return nil, err
	}
	q := clean
	if limit > 0 {
		q = fmt.Sprintf("SELECT * FROM (%s) AS report_query LIMIT %d", q, limit)
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	if db.Dialector.Name() == "postgres" {
		if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
			return nil, err
		}
	}

	rows, err := tx.Raw(q).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Result{SQL: clean, Columns: columns, Rows: []map[string]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	normalize(res.Rows)
	return res, nil
}
