package store

import (
	"fmt"
	"regexp"
	"strings"
)

// headerRegexp matches the title of the password column. RE2 \b is ASCII only,
// so the word end is spelled out.
var headerRegexp = regexp.MustCompile(`(?i)^(password|пароль)(\P{L}|$)`)

type row struct {
	// index is 0-based position of the row in the sheet.
	index int
	value string
}

// pick returns first count passwords of a column. The first row is skipped
// when it is a header, blank rows are skipped everywhere.
func pick(values []string, count int) ([]row, error) {
	if count <= 0 {
		return nil, errBadCount
	}
	rows := make([]row, 0, count)
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if i == 0 && headerRegexp.MatchString(v) {
			continue
		}
		rows = append(rows, row{index: i, value: v})
		if len(rows) == count {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientRows, count, len(rows))
}

func passwords(rows []row) []string {
	res := make([]string, len(rows))
	for i, r := range rows {
		res[i] = r.value
	}
	return res
}
