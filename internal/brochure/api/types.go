package api

type generateRequest struct {
	RU int `json:"ru"`
	EN int `json:"en"`
}
