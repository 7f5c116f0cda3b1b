package response

type response struct {
	UUID    string      `json:"uuid,omitempty"`
	IsOk    bool        `json:"is_ok"`
	Payload interface{} `json:"payload,omitempty"`
}
