package catalog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rasa-cafe/catalog"
	"rasa-cafe/database/testdb"
	"rasa-cafe/model"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	xl := excelize.NewFile()
	defer xl.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, xl.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, xl.Write(&buf))
	return &buf
}

func TestParseWorkbook(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Category", "Name", "Price", "Stock", "MaxOrderPerUser"},
		{"بار گرم", "Espresso", 30000, 12, 5},
		{"بار سرد", "Mojito", 55000},
		{"بار گرم", "", 1000},
		{"بار گرم", "Free Tea", 0},
		{"بار گرم", "Odd Stock", 100, "many"},
	})

	products, skipped, err := catalog.ParseWorkbook(buf, 50)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Espresso", products[0].Name)
	assert.Equal(t, int64(30000), products[0].Price)
	assert.Equal(t, 12, products[0].Stock)
	assert.Equal(t, 5, products[0].MaxOrderPerUser)
	assert.Equal(t, 50, products[1].Stock)

	assert.Equal(t, []catalog.SkippedRow{
		{Row: 4, Reason: "missing name"},
		{Row: 5, Reason: "invalid price"},
		{Row: 6, Reason: "invalid stock"},
	}, skipped)
}

func TestParseWorkbookErrors(t *testing.T) {
	_, _, err := catalog.ParseWorkbook(workbook(t, [][]interface{}{{"name", "price", "category"}}), 10)
	assert.ErrorIs(t, err, catalog.ErrNoRows)

	_, _, err = catalog.ParseWorkbook(workbook(t, [][]interface{}{{"name", "price"}, {"Tea", 10}}), 10)
	assert.ErrorIs(t, err, catalog.ErrMissingField)

	_, _, err = catalog.ParseWorkbook(workbook(t, [][]interface{}{{"name", "price", "category"}, {"Tea", -1, "x"}}), 10)
	assert.ErrorIs(t, err, catalog.ErrNoValidRows)

	_, _, err = catalog.ParseWorkbook(bytes.NewBufferString("not a workbook"), 10)
	assert.Error(t, err)
}

func TestImportAndSeed(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	require.NoError(t, catalog.Import(ctx, db, []model.Product{
		{Name: "اسپرسو", Price: 1, Category: catalog.HotBar, Stock: 3},
	}))

	menu := catalog.DefaultMenu()
	added, err := catalog.SeedMenu(ctx, db, menu)
	require.NoError(t, err)
	assert.Equal(t, len(menu)-1, added)

	added, err = catalog.SeedMenu(ctx, db, menu)
	require.NoError(t, err)
	assert.Zero(t, added)

	var espresso model.Product
	require.NoError(t, db.Where("name = ?", "اسپرسو").First(&espresso).Error)
	assert.Equal(t, int64(1), espresso.Price)
}
