package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Tables the generator may query.
var reportTables = []string{"users", "orders", "products"}

// hiddenColumns never reach the prompt.
var hiddenColumns = map[string]bool{"password": true}

const sampleRows = 3

// DescribeSchema lists each reportable table's columns with a few sample rows.
func DescribeSchema(ctx context.Context, db *gorm.DB) (string, error) {
	var b strings.Builder
	for _, table := range reportTables {
		columnTypes, err := db.WithContext(ctx).Migrator().ColumnTypes(table)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", table, err)
		}

		var names, defs []string
		for _, ct := range columnTypes {
			if hiddenColumns[ct.Name()] {
				continue
			}
			names = append(names, ct.Name())
			defs = append(defs, ct.Name()+" "+ct.DatabaseTypeName())
		}

		var rows []map[string]interface{}
		err = db.WithContext(ctx).Table(table).Select(names).Limit(sampleRows).Find(&rows).Error
		if err != nil {
			return "", fmt.Errorf("sample %s: %w", table, err)
		}
		normalize(rows)
		sample, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "TABLE: %s\nCOLUMNS: %s\nROWS: %s\n\n", table, strings.Join(defs, ", "), sample)
	}
	return b.String(), nil
}

// normalize turns driver byte slices into strings so rows encode as text.
func normalize(rows []map[string]interface{}) {
	for _, row := range rows {
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
	}
}
