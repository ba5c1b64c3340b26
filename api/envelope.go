package api

import (
	"encoding/json"
	"net/http"

	"costcalc/internal/errors"
)

// envelope is the uniform response wrapper
type envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *errorBody  `json:"error,omitempty"`
}

// errorBody is the serialized error shape
type errorBody struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeOK writes a success envelope
func writeOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{OK: true, Data: data})
}

// writeError writes an error envelope. Raw error internals (causes, panic
// text) stay out of the response body.
func writeError(w http.ResponseWriter, status int, err error) {
	body := &errorBody{
		Type:    string(errors.TypeInternal),
		Message: "internal error",
	}
	if e, ok := err.(*errors.Error); ok {
		body.Type = string(e.Type)
		body.Message = e.Message
		body.Fields = e.Fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{OK: false, Error: body})
}
