package mq

import (
	"encoding/json"

	"github.com/geoirb/go-brochure/internal/brochure"
)

type builder func(id string, payload interface{}, err error) ([]byte, error)

// GenerateTransport ...
type GenerateTransport struct {
	builder builder
}

// NewGenerateTransport ...
func NewGenerateTransport(
	builder builder,
) *GenerateTransport {
	return &GenerateTransport{
		builder: builder,
	}
}

// DecodeRequest ...
func (t *GenerateTransport) DecodeRequest(message []byte) (brochure.Request, error) {
	var req request
	err := json.Unmarshal(message, &req)
	return brochure.Request(req), err
}

// EncodeResponse ...
func (t *GenerateTransport) EncodeResponse(id string, document []byte, pages int, err error) (message []byte) {
	var payload interface{}
	if err == nil {
		payload = response{
			Document: document,
			Pages:    pages,
		}
	}
	message, _ = t.builder(id, payload, err)
	return
}
