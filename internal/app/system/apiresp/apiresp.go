// Package apiresp writes the JSON envelope every API endpoint answers with:
//
//	{ "hasError": false, "statusCode": 200, "message": {"general": ["..."]}, "response": {...} }
//
// Failures carry hasError=true and the same HTTP status in statusCode.
package apiresp

import (
	"encoding/json"
	"net/http"
)

// Envelope is the common response body.
type Envelope struct {
	HasError   bool    `json:"hasError"`
	StatusCode int     `json:"statusCode"`
	Message    Message `json:"message"`
	Response   any     `json:"response"`
}

// Message carries user-visible messages. General is omitted when empty.
type Message struct {
	General []string `json:"general,omitempty"`
}

// PaginatedBody is the response payload of a paginated list.
type PaginatedBody struct {
	Data       any `json:"data"`
	Pagination any `json:"pagination"`
}

func message(general string) Message {
	if general == "" {
		return Message{}
	}
	return Message{General: []string{general}}
}

// Success writes a 200 envelope. A nil response is sent as {}.
func Success(w http.ResponseWriter, general string, response any) {
	if response == nil {
		response = struct{}{}
	}
	Write(w, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    message(general),
		Response:   response,
	})
}

// Paginated writes a 200 envelope whose response is {data, pagination}.
func Paginated(w http.ResponseWriter, data, pagination any) {
	Success(w, "", PaginatedBody{Data: data, Pagination: pagination})
}

// Failure writes an error envelope with the given HTTP status.
func Failure(w http.ResponseWriter, status int, general string) {
	Write(w, status, Envelope{
		HasError:   true,
		StatusCode: status,
		Message:    message(general),
		Response:   struct{}{},
	})
}

// Write encodes env as JSON with the given status.
func Write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
