package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var errTest = errors.New("test-error")

func TestPick(t *testing.T) {
	type testCase struct {
		name   string
		values []string
		count  int
		rows   []row
		err    error
	}
	tests := []testCase{
		{
			name:   "english header",
			values: []string{"Password", "a", "b", "c"},
			count:  2,
			rows:   []row{{index: 1, value: "a"}, {index: 2, value: "b"}},
		},
		{
			name:   "russian header with suffix",
			values: []string{"ПАРОЛЬ (гость)", "a"},
			count:  1,
			rows:   []row{{index: 1, value: "a"}},
		},
		{
			name:   "word starting like header is a password",
			values: []string{"passwords1", "a"},
			count:  2,
			rows:   []row{{index: 0, value: "passwords1"}, {index: 1, value: "a"}},
		},
		{
			name:   "header only in first row",
			values: []string{"a", "password"},
			count:  2,
			rows:   []row{{index: 0, value: "a"}, {index: 1, value: "password"}},
		},
		{
			name:   "blank rows skipped",
			values: []string{"password", "", " a ", "   ", "b"},
			count:  2,
			rows:   []row{{index: 2, value: "a"}, {index: 4, value: "b"}},
		},
		{
			name:   "not enough",
			values: []string{"password", "a", ""},
			count:  2,
			err:    ErrInsufficientRows,
		},
		{
			name:   "zero count",
			values: []string{"a"},
			count:  0,
			err:    errBadCount,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rows, err := pick(test.values, test.count)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.rows, rows)
		})
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = fmt.Sprintf("pw-%02d", i)
	}
	m := NewMemory(rows...)

	first, err := m.FetchAndDelete(ctx, 5)
	require.NoError(t, err)
	second, err := m.FetchAndDelete(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, rows[:5], first)
	assert.Equal(t, rows[5:], second)
	assert.Zero(t, m.Len())

	_, err = m.FetchAndDelete(ctx, 1)
	assert.ErrorIs(t, err, ErrInsufficientRows)

	t.Run("shortage removes nothing", func(t *testing.T) {
		m := NewMemory("password", "a", "b")
		_, err := m.FetchAndDelete(ctx, 3)
		assert.ErrorIs(t, err, ErrInsufficientRows)
		assert.Equal(t, 3, m.Len())

		got, err := m.FetchAndDelete(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewMemory("a").FetchAndDelete(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type flakyStore struct {
	fails int
	err   error
	calls int
}

func (f *flakyStore) FetchAndDelete(_ context.Context, count int) ([]string, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, f.err
	}
	return make([]string, count), nil
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	logger := log.NewNopLogger()

	t.Run("recovers", func(t *testing.T) {
		f := &flakyStore{fails: 2, err: errTest}
		rows, err := WithRetry(f, 3, time.Millisecond, logger).FetchAndDelete(ctx, 4)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
		assert.Equal(t, 3, f.calls)
	})

	t.Run("exhausted", func(t *testing.T) {
		f := &flakyStore{fails: 5, err: errTest}
		_, err := WithRetry(f, 3, time.Millisecond, logger).FetchAndDelete(ctx, 4)
		assert.ErrorIs(t, err, ErrTransientStore)
		assert.ErrorIs(t, err, errTest)
		assert.Equal(t, 3, f.calls)
	})

	t.Run("shortage is not retried", func(t *testing.T) {
		f := &flakyStore{fails: 5, err: fmt.Errorf("%w: requested 4, available 1", ErrInsufficientRows)}
		_, err := WithRetry(f, 3, time.Millisecond, logger).FetchAndDelete(ctx, 4)
		assert.ErrorIs(t, err, ErrInsufficientRows)
		assert.NotErrorIs(t, err, ErrTransientStore)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		f := &flakyStore{fails: 5, err: errTest}
		_, err := WithRetry(f, 3, time.Hour, logger).FetchAndDelete(ctx, 4)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, f.calls)
	})
}

func TestLinearBackoff(t *testing.T) {
	assert.Equal(t, []time.Duration{600 * time.Millisecond, 1200 * time.Millisecond}, LinearBackoff(3, 600*time.Millisecond))
	assert.Empty(t, LinearBackoff(1, time.Second))
	assert.Empty(t, LinearBackoff(0, time.Second))
}

func newTestWorkbook(t *testing.T, values ...string) string {
	t.Helper()
	f := excelize.NewFile()
	for i, v := range values {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("B%d", i+1), v))
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+1), i+1))
	}
	path := filepath.Join(t.TempDir(), "passwords.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestWorkbook(t *testing.T) {
	ctx := context.Background()
	path := newTestWorkbook(t, "Пароль", "a", "", "b", "c")

	w, err := NewWorkbook(path, "", "B")
	require.NoError(t, err)

	got, err := w.FetchAndDelete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = w.FetchAndDelete(ctx, 2)
	assert.ErrorIs(t, err, ErrInsufficientRows)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Пароль"}, rows[0])
	assert.Equal(t, []string{"3"}, rows[1])
	assert.Equal(t, []string{"5", "c"}, rows[2])

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := NewWorkbook(path, "Guests", "B")
		assert.ErrorIs(t, err, errSheetNotFound)
	})
}
