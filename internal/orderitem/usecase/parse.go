package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

var (
	errNoColumns   = errors.New("no columns to parse from file")
	errInvalidUTF8 = errors.New("file is not valid utf-8 text")
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
	missingMarkers = map[string]struct{}{
		"":         {},
		"#N/A":     {},
		"#N/A N/A": {},
		"#NA":      {},
		"-1.#IND":  {},
		"-1.#QNAN": {},
		"-NaN":     {},
		"-nan":     {},
		"1.#IND":   {},
		"1.#QNAN":  {},
		"<NA>":     {},
		"N/A":      {},
		"NA":       {},
		"NULL":     {},
		"NaN":      {},
		"None":     {},
		"n/a":      {},
		"nan":      {},
		"null":     {},
	}
)

// readDataset reads delimited text with a header line into a Dataset.
//
// Completely empty lines are skipped and short records are padded with
// missing cells. When the first record has exactly one field more than the
// header, the leading field of every record is treated as a row index and
// dropped. Any other record longer than expected is rejected.
func readDataset(r io.Reader) (entity.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("read file: %w", err)
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return entity.Dataset{}, errInvalidUTF8
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entity.Dataset{}, errNoColumns
	}
	if err != nil {
		return entity.Dataset{}, err
	}

	columns := headerNames(header)
	rows := make([]entity.Row, 0)
	width := len(columns)
	indexed := false

	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entity.Dataset{}, err
		}

		if first && len(record) == len(columns)+1 {
			indexed = true
			width++
		}
		if len(record) > width {
			line, _ := reader.FieldPos(0)
			return entity.Dataset{}, fmt.Errorf("expected %d fields in line %d, saw %d", width, line, len(record))
		}
		if indexed {
			record = record[1:]
		}

		row := make(entity.Row, len(columns))
		for i := range row {
			if i >= len(record) {
				row[i] = entity.Missing()
				continue
			}
			row[i] = toCell(record[i])
		}
		rows = append(rows, row)
	}

	return entity.Dataset{Columns: columns, Rows: rows}, nil
}

func toCell(value string) entity.Cell {
	if _, missing := missingMarkers[value]; missing {
		return entity.Missing()
	}
	return entity.Text(value)
}

// headerNames names empty headers "Unnamed: <index>" and suffixes repeats with ".1", ".2", ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	next := make(map[string]int, len(header))

	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		if n, dup := next[name]; dup {
			base := name
			for {
				name = base + "." + strconv.Itoa(n)
				n++
				if _, taken := next[name]; !taken {
					break
				}
			}
			next[base] = n
		}

		next[name] = 1
		names[i] = name
	}

	return names
}
