package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testMarker = "{{PASSWORD}}"
	testStr    = "password: {PASSWORD}"
)

func TestIs(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)

	assert.True(t, p.Is(testMarker))
	assert.True(t, p.Is("{{QR_WIFI}}"))
	assert.False(t, p.Is(testStr))
	assert.False(t, p.Is("key "+testMarker))
}

func TestNames(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)

	tests := []struct {
		text  string
		names []string
	}{
		{
			text:  "Wi-Fi: {{PASSWORD}}\n{{QR_WIFI}}",
			names: []string{"PASSWORD", "QR_WIFI"},
		},
		{
			text:  "{{PASSWORD}} / {{PASSWORD}}",
			names: []string{"PASSWORD"},
		},
		{
			text:  "{{password}} {PASSWORD} {{ PASSWORD }}",
			names: nil,
		},
		{
			text:  "{{{SSID}}}",
			names: []string{"SSID"},
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.names, p.Names(test.text), test.text)
	}
}

func TestToken(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	assert.Equal(t, testMarker, p.Token("PASSWORD"))
	assert.True(t, p.Is(p.Token("QR_WIFI")))
}
