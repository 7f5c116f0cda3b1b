package qrcode

import (
	"errors"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

var errEmptyPayload = errors.New("empty qr payload")

// Creator qr codes.
type Creator struct {
	level qrcode.RecoveryLevel
}

// NewCreator returns creator with medium error correction, enough for short
// alphanumeric payloads.
func NewCreator() *Creator {
	return &Creator{
		level: qrcode.Medium,
	}
}

// Create returns png bytes of qr code with side of size pixels.
func (c *Creator) Create(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, errEmptyPayload
	}
	return qrcode.Encode(payload, c.level, size)
}

// CreateFile writes png of qr code to filename and returns its bytes.
func (c *Creator) CreateFile(payload string, size int, filename string) ([]byte, error) {
	png, err := c.Create(payload, size)
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(filename, png, 0o600); err != nil {
		return nil, err
	}
	return png, nil
}
