// Package errors provides coded errors for minbump's boundaries: argument
// validation, lockfile and config parsing, and registry transport.
//
// Resolution outcomes are never errors. A package the registry does not
// know, or a dependent with no favourable version, is reported as data.
//
// Each [Code] carries the HTTP status the API answers with and a short hint
// the CLI prints under the message:
//
//	err := errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", name)
//	errors.Is(err, errors.ErrCodeNetwork) // true
//	errors.HTTPStatus(err)                // 502
//	errors.Hint(err)                      // "check the registry setting ..."
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidLockfile Code = "INVALID_LOCKFILE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

type codeInfo struct {
	status int
	hint   string
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:    {http.StatusBadRequest, ""},
	ErrCodeInvalidPackage:  {http.StatusBadRequest, "npm names are lowercase, URL-safe, and may carry an @scope/ prefix"},
	ErrCodeInvalidVersion:  {http.StatusBadRequest, "use a semver version such as 1.2.3 or a range such as ^1.2.0"},
	ErrCodeInvalidManifest: {http.StatusBadRequest, "the manifest must be a package.json with string dependency maps"},
	ErrCodeInvalidLockfile: {http.StatusBadRequest, "only yarn.lock v1 files are supported"},
	ErrCodeInvalidConfig:   {http.StatusBadRequest, "run `minbump config` to see the file in use and its effective values"},
	ErrCodeNotFound:        {http.StatusNotFound, ""},
	ErrCodeFileNotFound:    {http.StatusNotFound, ""},
	ErrCodeNetwork:         {http.StatusBadGateway, "check the registry setting, or set retries in the config file"},
	ErrCodeTimeout:         {http.StatusGatewayTimeout, "narrow the batch or raise the request timeout"},
	ErrCodeInternal:        {http.StatusInternalServerError, ""},
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func find(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e := find(err)
	return e != nil && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without its code prefix or cause.
// Uncoded errors are returned as their Error string.
func UserMessage(err error) string {
	if e := find(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// Hint returns a remediation line for err's code, or "" when there is none.
func Hint(err error) string {
	return codes[GetCode(err)].hint
}

// HTTPStatus maps err to the status the API responds with. Uncoded errors
// map to 504 on an expired deadline and 500 otherwise.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
