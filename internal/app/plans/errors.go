package plans

import "errors"

// ErrPlanNotFullyLoaded is returned when the catalog could not rehydrate a stored plan.
// The accompanying plan is always empty, never partially populated.
var ErrPlanNotFullyLoaded = errors.New("plan could not be fully loaded")

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func notFound() *Error {
	return &Error{Status: 404, Code: "PLAN_NOT_FOUND", Message: "plan not found"}
}

func validation(message string, details map[string]any) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: message, Details: details}
}
