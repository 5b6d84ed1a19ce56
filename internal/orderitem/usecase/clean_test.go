package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

const dirtyOrders = `ord€r_id,curr€ncy,sku,item_price
1,USD,ABC123,10.0
2,USD,,20.0
3,USD,XYZ!@#,30.0
3,USD,XYZ!@#,30.0
,,,
`

func mustRead(t *testing.T, input string) entity.Dataset {
	t.Helper()
	ds, err := readDataset(strings.NewReader(input))
	require.NoError(t, err)
	return ds
}

func column(ds entity.Dataset, name string) []entity.Cell {
	idx := ds.ColumnIndex(name)
	cells := make([]entity.Cell, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		cells = append(cells, row[idx])
	}
	return cells
}

func TestCleanDirtyOrders(t *testing.T) {
	cleaned, stats := Clean(mustRead(t, dirtyOrders))

	assert.Equal(t, []string{"order_id", "currency", "sku", "item_price"}, cleaned.Columns)
	assert.Equal(t, entity.CleaningStats{
		BlankRows:       1,
		DuplicatedCount: 1,
		SanitisedCount:  2,
		MalformedRows:   0,
	}, stats)

	require.Len(t, cleaned.Rows, 3)
	assert.Equal(t, []entity.Cell{
		entity.Text("ABC123"),
		entity.Text("nan"),
		entity.Text("XYZ"),
	}, column(cleaned, "sku"))
}

func TestCleanAlreadyCleanOrders(t *testing.T) {
	input := "order_id,currency,sku,item_price\n1,USD,ABC123,10.0\n2,USD,XYZ123,20.0\n"

	cleaned, stats := Clean(mustRead(t, input))

	assert.Len(t, cleaned.Rows, 2)
	assert.Equal(t, entity.CleaningStats{}, stats)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	ds := mustRead(t, dirtyOrders)
	before := mustRead(t, dirtyOrders)

	Clean(ds)

	assert.Equal(t, before, ds)
}

func TestCleanIsStableOnItsOutput(t *testing.T) {
	once, _ := Clean(mustRead(t, dirtyOrders))
	twice, stats := Clean(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, entity.CleaningStats{}, stats)
}

func TestCleanDuplicatesCompareNumbers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rows    int
		dropped int64
	}{
		{"int and float spellings", "id,price\n1,10\n1,10.0\n01,1e1\n2,10\n", 2, 2},
		{"million in plain and decimal form", "order_id,item_price\n1,1000000\n1,1000000.0\n", 1, 1},
		{"seven digits", "order_id,item_price\n1,1234567\n1,1234567.0\n", 1, 1},
		{"mixed column widens to float", "id,n\n1,9007199254740993\n1,9007199254740992\n1,0.5\n", 2, 1},
		{"integer column stays exact", "id,n\n1,9007199254740993\n1,9007199254740992\n", 2, 0},
		{"negative zero", "id,n\n1,-0.0\n1,0\n", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, stats := Clean(mustRead(t, tt.input))

			assert.Equal(t, tt.dropped, stats.DuplicatedCount)
			assert.Len(t, cleaned.Rows, tt.rows)
		})
	}
}

func TestCleanDuplicatesKeepTextAsIs(t *testing.T) {
	input := "code\nA1\nA1\na1\n"

	cleaned, stats := Clean(mustRead(t, input))

	assert.Equal(t, int64(1), stats.DuplicatedCount)
	assert.Equal(t, []entity.Cell{entity.Text("A1"), entity.Text("a1")}, column(cleaned, "code"))
}

func TestCleanWithoutSKUColumn(t *testing.T) {
	input := "order_id,item_price\n1,\n2,3.5\n"

	cleaned, stats := Clean(mustRead(t, input))

	assert.Len(t, cleaned.Rows, 2)
	assert.Zero(t, stats.SanitisedCount)
	assert.Zero(t, stats.MalformedRows, "malformed rows need both item_price and sku")
}

func TestCleanCountsMissingPriceAsMalformed(t *testing.T) {
	input := "sku,item_price\nA,1\nB,\nC,NA\n"

	_, stats := Clean(mustRead(t, input))

	assert.Equal(t, int64(2), stats.MalformedRows)
	assert.Zero(t, stats.SanitisedCount)
}

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		"ord€r_id":          "order_id",
		"curr€ncy":          "currency",
		"  Item Price ":     "item_price",
		"SKU":               "sku",
		"__weird--name__":   "weird_name",
		"Unit Price (EUR)":  "unit_price_eur",
		"already_snake":     "already_snake",
		"ordr_id":           "order_id",
		"Café Owner":        "caf_owner",
		"multiple   spaces": "multiple_spaces",
	}

	for in, want := range tests {
		got := NormalizeColumn(in)
		assert.Equal(t, want, got, "NormalizeColumn(%q)", in)
		assert.Equal(t, got, NormalizeColumn(got), "not idempotent for %q", in)
	}
}

func TestSanitizeSKU(t *testing.T) {
	tests := map[string]string{
		"ABC123":     "ABC123",
		"XYZ!@#":     "XYZ",
		"ab-12_cd":   "ab-12_cd",
		"a b.c/d":    "abcd",
		"nan":        "nan",
		"ÄÖÜ-42":     "ÄÖÜ-42",
		"!!!":        "",
		"  PAD  ":    "PAD",
		"sku#001/v2": "sku001v2",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeSKU(in), "SanitizeSKU(%q)", in)
	}
}
