// Package catalog loads menu products from spreadsheets and seeds the
// default menu.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"rasa-cafe/model"
)

const importSheet = "Sheet1"

var (
	ErrNoRows       = errors.New("excel must have at least one row of data")
	ErrNoValidRows  = errors.New("no valid rows found")
	ErrMissingField = errors.New("header must contain name, price and category columns")
)

// SkippedRow explains why a spreadsheet row was not imported.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ParseWorkbook reads products from the first sheet. The first row is a
// header naming the columns: name, price and category are required; stock,
// description, imageUrl and maxOrderPerUser are optional. Bad rows are
// skipped and reported.
func ParseWorkbook(r io.Reader, defaultStock int) ([]model.Product, []SkippedRow, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer xl.Close()

	rows, err := xl.GetRows(importSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", importSheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoRows
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "price", "category"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, ErrMissingField
		}
	}
	cell := func(row []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		products []model.Product
		skipped  []SkippedRow
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		skip := func(reason string) { skipped = append(skipped, SkippedRow{Row: rowNum, Reason: reason}) }

		name := cell(row, "name")
		if name == "" {
			skip("missing name")
			continue
		}
		price, err := strconv.ParseInt(cell(row, "price"), 10, 64)
		if err != nil || price <= 0 {
			skip("invalid price")
			continue
		}
		category := cell(row, "category")
		if category == "" {
			skip("missing category")
			continue
		}

		stock := defaultStock
		if v := cell(row, "stock"); v != "" {
			if stock, err = strconv.Atoi(v); err != nil || stock < 0 {
				skip("invalid stock")
				continue
			}
		}
		maxPerOrder := 0
		if v := cell(row, "maxOrderPerUser"); v != "" {
			if maxPerOrder, err = strconv.Atoi(v); err != nil || maxPerOrder < 0 {
				skip("invalid maxOrderPerUser")
				continue
			}
		}

		products = append(products, model.Product{
			Name:            name,
			Price:           price,
			Category:        category,
			Stock:           stock,
			Description:     cell(row, "description"),
			ImageURL:        cell(row, "imageUrl"),
			MaxOrderPerUser: maxPerOrder,
		})
	}
	if len(products) == 0 {
		return nil, skipped, ErrNoValidRows
	}
	return products, skipped, nil
}

// Import inserts products in one transaction.
func Import(ctx context.Context, db *gorm.DB, products []model.Product) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&products, 100).Error; err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		return nil
	})
}
