package merger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePDF writes a valid PDF of blank pages, one per width.
func writePDF(t *testing.T, filename string, widths ...int) {
	t.Helper()
	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	pages := len(widths)
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for _, w := range widths {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 842] /Resources << >> >>", w))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o600))
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	m := NewMerger()

	// page width tells brochure and side
	var parts []string
	for i, widths := range [][]int{{101, 102}, {201, 202}, {301}} {
		part := filepath.Join(dir, fmt.Sprintf("brochure_%04d.pdf", i+1))
		writePDF(t, part, widths...)
		parts = append(parts, part)
	}

	out := filepath.Join(dir, "brochures.pdf")
	require.NoError(t, m.Merge(parts, out))
	n, err := m.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	dims, err := pdfapi.PageDimsFile(out)
	require.NoError(t, err)
	widths := make([]int, len(dims))
	for i, d := range dims {
		widths[i] = int(d.Width)
	}
	assert.Equal(t, []int{101, 102, 201, 202, 301}, widths)

	t.Run("single part", func(t *testing.T) {
		out := filepath.Join(dir, "single.pdf")
		require.NoError(t, m.Merge(parts[:1], out))
		n, err := m.PageCount(out)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("no parts", func(t *testing.T) {
		assert.Equal(t, errNoParts, m.Merge(nil, filepath.Join(dir, "empty.pdf")))
	})

	t.Run("missing part", func(t *testing.T) {
		err := m.Merge([]string{parts[0], filepath.Join(dir, "missing.pdf")}, filepath.Join(dir, "broken.pdf"))
		assert.Error(t, err)
	})
}
