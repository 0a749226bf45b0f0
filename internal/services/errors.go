package services

import (
	"errors"
	"fmt"

	"github.com/bobby-s-dev/weather-now/pkg/client"
)

const (
	MsgLocationFetchFailed    = "Failed to fetch location data."
	MsgReverseFetchFailed     = "Failed to fetch location data from coordinates."
	MsgWeatherFetchFailed     = "Failed to fetch weather data."
	MsgLocationUndetermined   = "Could not determine location for the selected coordinates."
	MsgUnknown                = "An unknown error occurred."
	cityNotFoundMessagePrefix = "Could not find city: "
)

// NetworkError is a transport failure, a non-2xx response or an undecodable
// body from one of the upstream APIs. Message is safe to show to users.
type NetworkError struct {
	Op         string
	Message    string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup that succeeded but matched nothing.
type NotFoundError struct {
	Query   string
	Message string
}

func NewCityNotFound(query string) *NotFoundError {
	return &NotFoundError{Query: query, Message: cityNotFoundMessagePrefix + query}
}

func NewCoordinatesNotFound(lat, lon float64) *NotFoundError {
	return &NotFoundError{Query: fmt.Sprintf("%g,%g", lat, lon), Message: MsgLocationUndetermined}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func newNetworkError(op, message string, err error) *NetworkError {
	ne := &NetworkError{Op: op, Message: message, Err: err}
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		ne.StatusCode = statusErr.StatusCode
	}
	return ne
}

// UserMessage turns any error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return netErr.Message
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) && notFound.Message != "" {
		return notFound.Message
	}

	return MsgUnknown
}
