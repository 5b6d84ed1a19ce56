package usecase

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

const (
	columnSKU       = "sku"
	columnItemPrice = "item_price"

	// missingSKUText is what a missing SKU becomes once coerced to text.
	missingSKUText = "nan"
)

var (
	nonWordRun    = regexp.MustCompile(`\W+`)
	columnRenames = map[string]string{
		"ordr_id": "order_id",
		"currncy": "currency",
	}
)

// Clean normalizes column names, drops blank and duplicate rows, sanitizes
// SKUs and counts malformed rows. The input dataset is left untouched.
func Clean(ds entity.Dataset) (entity.Dataset, entity.CleaningStats) {
	var stats entity.CleaningStats

	columns := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		columns[i] = NormalizeColumn(col)
	}

	rows := make([]entity.Row, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if isBlank(row) {
			stats.BlankRows++
			continue
		}
		rows = append(rows, row)
	}

	rows, stats.DuplicatedCount = dropDuplicates(rows, len(columns))

	cleaned := entity.Dataset{Columns: columns, Rows: rows}

	if idx := cleaned.ColumnIndex(columnSKU); idx >= 0 {
		stats.SanitisedCount = sanitizeSKUs(cleaned.Rows, idx)
	}

	if cleaned.HasColumns(columnItemPrice, columnSKU) {
		priceIdx := cleaned.ColumnIndex(columnItemPrice)
		skuIdx := cleaned.ColumnIndex(columnSKU)
		for _, row := range cleaned.Rows {
			if row[priceIdx].Missing || row[skuIdx].Missing {
				stats.MalformedRows++
			}
		}
	}

	return cleaned, stats
}

// NormalizeColumn turns a raw header into a snake_case ASCII column name.
// Applying it to its own output returns the same value.
func NormalizeColumn(name string) string {
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)

	name = strings.ToLower(strings.TrimSpace(name))
	name = nonWordRun.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if renamed, ok := columnRenames[name]; ok {
		return renamed
	}
	return name
}

// SanitizeSKU keeps letters, digits, underscores and hyphens.
func SanitizeSKU(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, value)
}

func isBlank(row entity.Row) bool {
	for _, cell := range row {
		if !cell.Missing {
			return false
		}
	}
	return true
}

// dropDuplicates keeps the first occurrence of every row. Columns whose
// values are all numeric compare by number, so "10" and "10.0" are equal.
func dropDuplicates(rows []entity.Row, width int) ([]entity.Row, int64) {
	kinds := columnKinds(rows, width)
	seen := make(map[string]struct{}, len(rows))
	kept := rows[:0:0]

	var dropped int64
	for _, row := range rows {
		key := rowKey(row, kinds)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	return kept, dropped
}

type columnKind uint8

const (
	kindText columnKind = iota
	kindInt
	// any non-integer value widens the whole column to float64
	kindFloat
)

func columnKinds(rows []entity.Row, width int) []columnKind {
	kinds := make([]columnKind, width)
	for col := range kinds {
		kind := kindText
		for _, row := range rows {
			cell := row[col]
			if cell.Missing {
				continue
			}
			value := strings.TrimSpace(cell.Value)
			if _, err := strconv.ParseInt(value, 10, 64); err == nil {
				if kind == kindText {
					kind = kindInt
				}
				continue
			}
			if _, err := strconv.ParseFloat(value, 64); err == nil {
				kind = kindFloat
				continue
			}
			kind = kindText
			break
		}
		kinds[col] = kind
	}
	return kinds
}

// numberKey renders value so that numerically equal values of one column
// share a key. The column kind must come from columnKinds.
func numberKey(value string, kind columnKind) string {
	value = strings.TrimSpace(value)
	if kind == kindInt {
		i, _ := strconv.ParseInt(value, 10, 64)
		return strconv.FormatInt(i, 10)
	}

	f, _ := strconv.ParseFloat(value, 64)
	if f == 0 {
		f = 0 // folds -0 into 0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// rowKey encodes a row so that equal rows, and only equal rows, share a key.
// Missing cells are written as "-" and values as "<len>:<value>".
func rowKey(row entity.Row, kinds []columnKind) string {
	var b strings.Builder
	for i, cell := range row {
		if cell.Missing {
			b.WriteByte('-')
			continue
		}

		value := cell.Value
		if kinds[i] != kindText {
			value = numberKey(value, kinds[i])
		}
		b.WriteString(strconv.Itoa(len(value)))
		b.WriteByte(':')
		b.WriteString(value)
	}
	return b.String()
}

// sanitizeSKUs rewrites the SKU cell of every row in place, cloning rows
// before changing them so callers' rows are not shared.
func sanitizeSKUs(rows []entity.Row, idx int) int64 {
	var changed int64
	for i, row := range rows {
		cell := row[idx]

		original := cell.Value
		if cell.Missing {
			original = missingSKUText
		}

		sanitized := SanitizeSKU(original)
		if !cell.Missing && sanitized == cell.Value {
			continue
		}

		changed++
		row = slices.Clone(row)
		row[idx] = entity.Text(sanitized)
		rows[i] = row
	}
	return changed
}
