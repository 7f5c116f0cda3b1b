package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook store reads passwords from one column of a local xlsx file.
type Workbook struct {
	mu     sync.Mutex
	path   string
	sheet  string
	column int
}

// NewWorkbook checks that file and sheet exist. Empty sheet selects the first
// one, column is a letter: A, B, ...
func NewWorkbook(path, sheet, column string) (*Workbook, error) {
	col, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return nil, err
	}
	w := &Workbook{
		path:   path,
		sheet:  sheet,
		column: col - 1,
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err = w.sheetName(f); err != nil {
		return nil, err
	}
	return w, nil
}

// FetchAndDelete passwords, the file is saved before return.
func (w *Workbook) FetchAndDelete(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := w.sheetName(f)
	if err != nil {
		return nil, err
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(cells))
	for i, r := range cells {
		if w.column < len(r) {
			values[i] = r[w.column]
		}
	}

	rows, err := pick(values, count)
	if err != nil {
		return nil, err
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if err = f.RemoveRow(sheet, rows[i].index+1); err != nil {
			return nil, fmt.Errorf("remove row %d: %w", rows[i].index+1, err)
		}
	}
	if err = f.Save(); err != nil {
		return nil, err
	}
	return passwords(rows), nil
}

func (w *Workbook) sheetName(f *excelize.File) (string, error) {
	if w.sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return "", errSheetNotFound
		}
		return list[0], nil
	}
	if idx, err := f.GetSheetIndex(w.sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", errSheetNotFound, w.sheet)
	}
	return w.sheet, nil
}
