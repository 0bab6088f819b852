package models

import "net/http"

// Response is the success envelope returned to API consumers.
type Response struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse is the failure envelope returned to API consumers.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Result carries the outcome of a service call. Internal callers use Data
// directly; externalizing callers render it with Response.
type Result[T any] struct {
	Status  int
	Data    T
	Message string
}

func NewResult[T any](status int, data T, message string) Result[T] {
	return Result[T]{Status: status, Data: data, Message: message}
}

func OK[T any](data T) Result[T] {
	return NewResult(http.StatusOK, data, MsgSuccessful)
}

func (r Result[T]) Response() Response {
	return Response{Status: r.Status, Data: r.Data, Message: r.Message}
}

// UpdateCount reports what a filtered bulk update touched.
type UpdateCount struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}
