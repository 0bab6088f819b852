package models

import (
	"errors"
	"net/http"
)

// ErrorBody is the payload every domain error carries.
type ErrorBody struct {
	Status      int                 `json:"status"`
	Message     string              `json:"message"`
	Data        []map[string]string `json:"data,omitempty"`
	ConflictKey string              `json:"conflictKey,omitempty"`
	ConflictObj interface{}         `json:"conflictObj,omitempty"`
}

func (e ErrorBody) Error() string {
	return e.Message
}

func (e ErrorBody) Body() ErrorBody {
	return e
}

// AppError is implemented by every error kind below.
type AppError interface {
	error
	Body() ErrorBody
}

type ErrorNotFound struct{ ErrorBody }

type ErrorConflict struct{ ErrorBody }

type ErrorUnprocessableEntity struct{ ErrorBody }

type ErrorValidation struct{ ErrorBody }

type ErrorUnauthorized struct{ ErrorBody }

// ErrorExternalService reports a failed blob store or image deriver call.
type ErrorExternalService struct {
	ErrorBody
	Cause error
}

func (e ErrorExternalService) Unwrap() error { return e.Cause }

// ErrorInternalServer wraps an unexpected store or runtime failure.
type ErrorInternalServer struct {
	ErrorBody
	Cause error
}

func (e ErrorInternalServer) Unwrap() error { return e.Cause }

func keyed(errKey, message string) []map[string]string {
	if errKey == "" {
		return nil
	}
	return []map[string]string{{errKey: message}}
}

// NewErrorNotFound builds a 404. errKey, when set, attributes the failure
// to a request field.
func NewErrorNotFound(errKey string) ErrorNotFound {
	return ErrorNotFound{ErrorBody{
		Status:  http.StatusNotFound,
		Message: MsgNotFound,
		Data:    keyed(errKey, MsgNotFound),
	}}
}

func NewErrorConflict(errKey, detail, conflictKey string, conflictObj interface{}) ErrorConflict {
	return ErrorConflict{ErrorBody{
		Status:      http.StatusConflict,
		Message:     MsgAlreadyExist,
		Data:        keyed(errKey, detail),
		ConflictKey: conflictKey,
		ConflictObj: conflictObj,
	}}
}

func NewErrorUnprocessableEntity(message string) ErrorUnprocessableEntity {
	return ErrorUnprocessableEntity{ErrorBody{Status: http.StatusUnprocessableEntity, Message: message}}
}

func NewErrorValidation(message string, data []map[string]string) ErrorValidation {
	return ErrorValidation{ErrorBody{Status: http.StatusBadRequest, Message: message, Data: data}}
}

func NewErrorUnauthorized(message string) ErrorUnauthorized {
	return ErrorUnauthorized{ErrorBody{Status: http.StatusUnauthorized, Message: message}}
}

func NewErrorExternalService(message string, cause error) ErrorExternalService {
	return ErrorExternalService{
		ErrorBody: ErrorBody{Status: http.StatusUnprocessableEntity, Message: message},
		Cause:     cause,
	}
}

func NewErrorInternalServer(cause error) ErrorInternalServer {
	return ErrorInternalServer{
		ErrorBody: ErrorBody{Status: http.StatusInternalServerError, Message: MsgUnknownError},
		Cause:     cause,
	}
}

// AsAppError finds the domain error in err's chain.
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is, or wraps, an ErrorNotFound.
func IsNotFound(err error) bool {
	var nf ErrorNotFound
	return errors.As(err, &nf)
}
