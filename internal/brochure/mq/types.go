package mq

type request struct {
	UUID string `json:"uuid"`
	RU   int    `json:"ru"`
	EN   int    `json:"en"`
}

type response struct {
	Document []byte `json:"document"`
	Pages    int    `json:"pages"`
}
