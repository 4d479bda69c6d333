package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a GridError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *GridError {
	if err == nil {
		return nil
	}

	var ge *GridError
	if errors.As(err, &ge) {
		return &GridError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ge,
			Context:     ge.Context,
			Column:      ge.Column,
			Recoverable: ge.Recoverable,
		}
	}

	return &GridError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeData,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *GridError {
	ge := Wrap(err, ErrorTypeIO, code, message)
	if ge != nil {
		ge.Recoverable = false
	}
	return ge
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *GridError {
	ge := Wrap(err, ErrorTypeConfig, code, message)
	if ge != nil {
		ge.Recoverable = false
	}
	return ge
}

// GetErrorContext extracts context information from a GridError
func GetErrorContext(err error) map[string]interface{} {
	var ge *GridError
	if errors.As(err, &ge) {
		context := make(map[string]interface{})
		for k, v := range ge.Context {
			context[k] = v
		}
		if ge.Column != "" {
			context["column"] = ge.Column
		}
		context["type"] = string(ge.Type)
		context["code"] = ge.Code
		context["recoverable"] = ge.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}
