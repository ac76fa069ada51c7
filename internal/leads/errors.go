package leads

import "errors"

var (
	// ErrMissingRequiredFields is returned when firstName, lastName or email is absent
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrInvalidBody is returned when the request body is not a JSON object
	ErrInvalidBody = errors.New("invalid request body")

	// ErrUnsupportedValue is returned for malformed form values
	ErrUnsupportedValue = errors.New("unsupported field value")

	// ErrLeadNotFound is returned when a recorded lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
