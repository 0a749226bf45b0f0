package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network", &NetworkError{Op: "geocode", Message: MsgLocationFetchFailed, Err: errors.New("boom")}, MsgLocationFetchFailed},
		{"wrapped network", fmt.Errorf("resolve: %w", &NetworkError{Message: MsgWeatherFetchFailed}), MsgWeatherFetchFailed},
		{"city not found", NewCityNotFound("Atlantis"), "Could not find city: Atlantis"},
		{"coordinates not found", NewCoordinatesNotFound(0, 0), MsgLocationUndetermined},
		{"network without message", &NetworkError{Err: errors.New("x")}, MsgUnknown},
		{"anything else", context.DeadlineExceeded, MsgUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := newNetworkError("fetch_weather", MsgWeatherFetchFailed, cause)
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
}
