package response

import (
	"encoding/json"
)

// Build response to payload and error.
func Build(payload interface{}, err error) ([]byte, error) {
	return BuildWithID("", payload, err)
}

// BuildWithID builds response to request id, payload and error.
func BuildWithID(id string, payload interface{}, err error) ([]byte, error) {
	response := response{
		UUID: id,
		IsOk: err == nil,
	}

	if payload != nil {
		response.Payload = payload
	}

	if !response.IsOk {
		response.Payload = err.Error()
	}
	return json.Marshal(response)
}
