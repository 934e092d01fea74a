// Package excel reads product bulk-import spreadsheets into normalized rows.
package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile means the workbook has no sheet, no data rows, or only
// blank data rows.
var ErrEmptyFile = errors.New("excel file is empty or has no valid data rows")

// SchemaError means a required column could not be located in the header.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q not found in excel file", e.Column)
}

// Row is one normalized data row. Number is the 1-based spreadsheet row,
// so the first data row is 2 (row 1 is the header).
type Row struct {
	ProductId   string
	ProductName string
	Number      int
}

// ParseProducts reads the first sheet and returns the normalized data rows.
// Header matching is case-insensitive and ignores spaces, underscores and
// hyphens, so "Product ID", "product_id" and "productId" all resolve.
// Rows with both cells blank are dropped without being counted.
func ParseProducts(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read excel sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	idCol, nameCol := -1, -1
	for i, h := range rows[0] {
		switch canonicalHeader(h) {
		case "productid":
			if idCol < 0 {
				idCol = i
			}
		case "productname":
			if nameCol < 0 {
				nameCol = i
			}
		}
	}
	if idCol < 0 {
		return nil, &SchemaError{Column: "product_id"}
	}
	if nameCol < 0 {
		return nil, &SchemaError{Column: "product_name"}
	}

	var out []Row
	for i, row := range rows[1:] {
		productID := NormalizeIdentifier(cellAt(row, idCol))
		productName := strings.TrimSpace(cellAt(row, nameCol))

		if productID == "" && productName == "" {
			continue // blank row
		}

		out = append(out, Row{
			ProductId:   productID,
			ProductName: productName,
			Number:      i + 2,
		})
	}

	if len(out) == 0 {
		return nil, ErrEmptyFile
	}

	return out, nil
}

// NormalizeIdentifier undoes spreadsheet numeric storage. Exponential
// notation is expanded back to a plain integer string, a trailing
// fractional part is cut, and any remaining non-digit characters are
// stripped. Leading zeros survive only when the cell was stored as text.
func NormalizeIdentifier(cell string) string {
	v := strings.TrimSpace(cell)

	if strings.ContainsAny(v, "eE") {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			v = strconv.FormatFloat(n, 'f', 0, 64)
		}
	}

	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}

	return strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, v)
}

func canonicalHeader(h string) string {
	h = strings.ToLower(h)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, h)
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
