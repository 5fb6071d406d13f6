package errors

import "net/http"

var ErrLockNotAcquired = &Exception{
	Kind:       KindConflict,
	Message:    "resource is being processed by another request",
	StatusCode: http.StatusConflict,
}
