package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)

	tests := []struct {
		filename string
		typ      string
		err      error
	}{
		{filename: "brochure_ru.pptx", typ: "pptx"},
		{filename: "/template/Brochure EN.PPTX", typ: "pptx"},
		{filename: "archive.tar.gz", typ: "gz"},
		{filename: "README", err: errTypeNotDefined},
		{filename: "template.", err: errTypeNotDefined},
	}
	for _, test := range tests {
		typ, err := p.Type(test.filename)
		assert.Equal(t, test.err, err, test.filename)
		assert.Equal(t, test.typ, typ, test.filename)
	}
}
