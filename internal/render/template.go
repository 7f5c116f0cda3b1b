package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/geoirb/go-brochure/internal/pptx"
)

var errEmptyTemplate = errors.New("template has no slides")

type placeholder interface {
	Is(str string) bool
	Token(name string) string
	Names(text string) []string
}

// Template is an immutable presentation brochures are rendered from. It keeps
// the raw package only: every render works on its own parsed copy.
type Template struct {
	name    string
	data    []byte
	slides  int
	markers []string
}

// LoadTemplate reads pptx file.
func LoadTemplate(filename string, placeholder placeholder) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewTemplate(filepath.Base(filename), data, placeholder)
}

// NewTemplate checks pptx bytes and collects markers of all slides.
func NewTemplate(name string, data []byte, placeholder placeholder) (*Template, error) {
	t := &Template{
		name: name,
		data: bytes.Clone(data),
	}
	deck, err := t.open()
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	slides, err := deck.Slides()
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("template %s: %w", name, errEmptyTemplate)
	}
	t.slides = len(slides)

	seen := make(map[string]bool)
	for _, s := range slides {
		for _, m := range placeholder.Names(s.Text()) {
			if !seen[m] {
				seen[m] = true
				t.markers = append(t.markers, m)
			}
		}
	}
	return t, nil
}

// Name of template file.
func (t *Template) Name() string {
	return t.name
}

// Slides count.
func (t *Template) Slides() int {
	return t.slides
}

// Markers returns names of {{NAME}} markers found in the template.
func (t *Template) Markers() []string {
	return append([]string(nil), t.markers...)
}

func (t *Template) open() (*pptx.Deck, error) {
	pkg, err := pptx.Read(t.data)
	if err != nil {
		return nil, err
	}
	return pptx.OpenDeck(pkg)
}
