package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var errSheetNotFound = errors.New("sheet not found")

// Sheets store reads passwords from one column of a Google spreadsheet.
type Sheets struct {
	mu            sync.Mutex
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	column        string
}

// NewSheets authenticates with service account key file. Empty sheetName
// selects the first sheet.
func NewSheets(
	ctx context.Context,
	credentialsFile string,
	spreadsheetID string,
	sheetName string,
	column string,
) (*Sheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		column:        strings.ToUpper(column),
	}, nil
}

// FetchAndDelete reads the column, then deletes the picked rows bottom-up in
// one batch update.
func (s *Sheets) FetchAndDelete(ctx context.Context, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheetID, title, err := s.sheet(ctx)
	if err != nil {
		return nil, err
	}

	rng := fmt.Sprintf("'%s'!%s:%s", strings.ReplaceAll(title, "'", "''"), s.column, s.column)
	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	values := make([]string, len(vr.Values))
	for i, cells := range vr.Values {
		if len(cells) > 0 {
			values[i] = fmt.Sprint(cells[0])
		}
	}

	rows, err := pick(values, count)
	if err != nil {
		return nil, err
	}

	reqs := make([]*sheets.Request, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		reqs = append(reqs, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(rows[i].index),
					EndIndex:        int64(rows[i].index + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("delete rows: %w", err)
	}
	return passwords(rows), nil
}

// sheet resolves id and title of the configured sheet.
func (s *Sheets) sheet(ctx context.Context) (int64, string, error) {
	sp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return 0, "", fmt.Errorf("spreadsheet %s: %w", s.spreadsheetID, err)
	}
	for _, sh := range sp.Sheets {
		if sh.Properties == nil {
			continue
		}
		if s.sheetName == "" || sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, sh.Properties.Title, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q", errSheetNotFound, s.sheetName)
}
