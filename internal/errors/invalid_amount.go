package errors

import "net/http"

var ErrInvalidAmount = &Exception{
	Kind:       KindValidation,
	Message:    "amount must be greater than zero",
	StatusCode: http.StatusBadRequest,
}

var ErrInsufficientCredits = &Exception{
	Kind:       KindValidation,
	Message:    "insufficient credits",
	StatusCode: http.StatusBadRequest,
}
