package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "connection refused maps to unreachable source",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "SRC001",
			wantMessage: "The record source could not be reached",
		},
		{
			name:        "malformed dataset",
			err:         errors.New("malformed dataset: expected a JSON array"),
			wantCode:    "SRC002",
			wantMessage: "The record source did not return a list of records",
		},
		{
			name:        "missing file",
			err:         errors.New("open /data/products.json: no such file or directory"),
			wantCode:    "SRC005",
			wantMessage: "The record source does not exist",
		},
		{
			name:        "invalid date from ingestion",
			err:         errors.New(`createdAt: invalid date: "yesterday"`),
			wantCode:    "VAL001",
			wantMessage: "Invalid date format detected",
		},
		{
			name:        "unknown column",
			err:         errors.New(`unknown column "colour"`),
			wantCode:    "VAL004",
			wantMessage: "Unknown column",
		},
		{
			name:        "wrapped session not found",
			err:         fmt.Errorf("%w: abc", ErrSessionNotFound),
			wantCode:    "SES001",
			wantMessage: "View session not found",
		},
		{
			name:        "export limiter busy",
			err:         ErrTooManyExports,
			wantCode:    "REQ001",
			wantMessage: "System is busy with other exports",
		},
		{
			name:        "deadline exceeded",
			err:         context.DeadlineExceeded,
			wantCode:    "REQ003",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SESSION NOT FOUND"),
			wantCode:    "SES001",
			wantMessage: "View session not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(errors.New("invalid number: price -1 is negative"))

	expected := "Invalid number format detected (Code: VAL002). Use a plain non-negative decimal such as 19.99"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrSessionNotFound, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("malformed dataset: top-level value is an object")
		userErr := NewUserError(techErr)

		if userErr.Error() != "The record source did not return a list of records" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
