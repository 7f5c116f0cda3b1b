// Package merger concatenates PDF files.
package merger

import (
	"errors"
	"io"
	"os"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var errNoParts = errors.New("nothing to merge")

// Merger of PDF files.
type Merger struct {
	config *model.Configuration
}

// NewMerger returns merger tolerant to the small deviations office suites
// produce. pdfcpu is kept from reading or writing its user config dir.
func NewMerger() *Merger {
	pdfapi.DisableConfigDir()
	config := model.NewDefaultConfiguration()
	config.ValidationMode = model.ValidationRelaxed
	return &Merger{
		config: config,
	}
}

// Merge writes pages of parts, in order, to out.
func (m *Merger) Merge(parts []string, out string) error {
	switch len(parts) {
	case 0:
		return errNoParts
	case 1:
		return copyFile(parts[0], out)
	}
	return pdfapi.MergeCreateFile(parts, out, false, m.config)
}

// PageCount of PDF file.
func (m *Merger) PageCount(filename string) (int, error) {
	return pdfapi.PageCountFile(filename)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return
}
