package utils

import "github.com/sirupsen/logrus"

// ResponseData is the error envelope rendered by the recovery middleware.
// Successful handlers answer with their own flat payloads, every one of
// them carrying the same "ok" flag.
type ResponseData struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// PanicIfNeeded hands err to middleware.Recovery, which turns it into a JSON response.
func PanicIfNeeded(err any) {
	if err != nil {
		if e, ok := err.(error); ok {
			logrus.WithError(e).Debug("[REST] request failed")
		}
		panic(err)
	}
}
