package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(ErrCodeInvalidStretch, "unknown stretch %q", "wide"),
			want: `INVALID_STRETCH: unknown stretch "wide"`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeNetwork, errors.New("connection refused"), "fetch board"),
			want: "NETWORK_ERROR: fetch board: connection refused",
		},
		{
			name: "nested structured cause",
			err:  Wrap(ErrCodeInvalidBoard, New(ErrCodeInvalidInput, "empty id"), "tile 3"),
			want: "INVALID_BOARD: tile 3: INVALID_INPUT: empty id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch %s", "https://example.com/board.json")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(fmt.Errorf("load: %w", err), cause) {
		t.Error("cause not reachable through a fmt wrapper")
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(ErrCodeSessionNotFound, "no session %q", "abc"), ErrCodeSessionNotFound},
		{"fmt wrapped", fmt.Errorf("load: %w", New(ErrCodeInvalidBoard, "duplicate id")), ErrCodeInvalidBoard},
		{"outermost wins", Wrap(ErrCodeTimeout, New(ErrCodeNetwork, "inner"), "outer"), ErrCodeTimeout},
		{"rate limited", &RateLimitedError{RetryAfter: 3}, ErrCodeRateLimited},
		{"wrapped rate limited", fmt.Errorf("fetch: %w", &RateLimitedError{}), ErrCodeRateLimited},
		{"plain", errors.New("plain error"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(%q) = false", tt.want)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeInvalidChange, "index %d out of range", 12), "index 12 out of range"},
		{"with cause", Wrap(ErrCodeTimeout, errors.New("deadline exceeded"), "board fetch timed out"), "board fetch timed out"},
		{"fmt wrapped", fmt.Errorf("render: %w", New(ErrCodeInvalidFormat, "unknown format %q", "gif")), `unknown format "gif"`},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		retryAfter int
		want       string
	}{
		{60, "rate limited: retry after 60 seconds"},
		{0, "rate limited"},
	}
	for _, tt := range tests {
		err := &RateLimitedError{RetryAfter: tt.retryAfter}
		if got := err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %q, want %q", err.Code(), ErrCodeRateLimited)
		}
	}
}
