package errors

import "net/http"

var ErrReasonRequired = &Exception{
	Kind:       KindValidation,
	Message:    "a reason is required for this action",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidAction = &Exception{
	Kind:       KindValidation,
	Message:    "invalid action",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidRole = &Exception{
	Kind:       KindValidation,
	Message:    "role must be client or tasker",
	StatusCode: http.StatusBadRequest,
}
