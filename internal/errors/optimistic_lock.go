package errors

import "net/http"

var ErrOptimisticLock = &Exception{
	Kind:       KindConflict,
	Message:    "assignment was modified concurrently; reload and retry",
	StatusCode: http.StatusConflict,
}
