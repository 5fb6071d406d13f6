package errors

import "net/http"

var ErrTaskNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrAssignmentNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "task request not found",
	StatusCode: http.StatusNotFound,
}

var ErrDisputeNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "dispute not found",
	StatusCode: http.StatusNotFound,
}

var ErrPaymentNotFound = &Exception{
	Kind:       KindNotFound,
	Message:    "payment not found",
	StatusCode: http.StatusNotFound,
}
