package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrCodeInvalidVersion, "invalid version: %q", "1.x.y")
	if got := plain.Error(); got != `INVALID_VERSION: invalid version: "1.x.y"` {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("connection reset")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch %s", "lodash")
	if got := wrapped.Error(); got != "NETWORK_ERROR: fetch lodash: connection reset" {
		t.Errorf("Error() = %q", got)
	}
	if errors.Unwrap(wrapped) != cause || !errors.Is(wrapped, cause) {
		t.Error("Wrap should keep the cause reachable")
	}
}

func TestCodeLookup(t *testing.T) {
	lockErr := New(ErrCodeInvalidLockfile, "line 3: unexpected indent")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"direct", lockErr, ErrCodeInvalidLockfile, "line 3: unexpected indent"},
		{"fmt wrapped", fmt.Errorf("read yarn.lock: %w", lockErr), ErrCodeInvalidLockfile, "line 3: unexpected indent"},
		{"outermost wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInvalidConfig, "outer"},
		{"plain", errors.New("boom"), "", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeTimeout) {
				t.Error("Is(TIMEOUT) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if GetCode(nil) != "" || Is(nil, ErrCodeInternal) {
		t.Error("nil should carry no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", New(ErrCodeInvalidInput, "bad"), 400},
		{"invalid package", New(ErrCodeInvalidPackage, "bad"), 400},
		{"invalid lockfile", Wrap(ErrCodeInvalidLockfile, errors.New("eof"), "parse"), 400},
		{"not found", New(ErrCodeNotFound, "gone"), 404},
		{"network", Wrap(ErrCodeNetwork, errors.New("reset"), "fetch lib"), 502},
		{"timeout", New(ErrCodeTimeout, "slow"), 504},
		{"deadline", fmt.Errorf("fetch lib: %w", context.DeadlineExceeded), 504},
		{"internal", New(ErrCodeInternal, "bug"), 500},
		{"plain", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestEveryCodeHasStatus(t *testing.T) {
	all := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidVersion,
		ErrCodeInvalidManifest, ErrCodeInvalidLockfile, ErrCodeInvalidConfig,
		ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeNetwork, ErrCodeTimeout,
		ErrCodeInternal,
	}
	for _, c := range all {
		if codes[c].status == 0 {
			t.Errorf("%s has no HTTP status", c)
		}
	}
}

func TestHint(t *testing.T) {
	if Hint(New(ErrCodeInvalidLockfile, "x")) == "" {
		t.Error("lockfile errors should carry a hint")
	}
	if Hint(New(ErrCodeInvalidInput, "x")) != "" {
		t.Error("generic input errors should not carry a hint")
	}
	if Hint(errors.New("plain")) != "" {
		t.Error("uncoded errors should not carry a hint")
	}
}
