package types

import (
	"errors"
	"fmt"
)

// Status is the result class of a bridge operation
type Status int

const (
	StatusOK Status = iota
	StatusUnknown
	StatusNotExist
	StatusNoParent
	StatusInvalidArgument
	StatusInvalidVLAN
)

var statusReasons = map[Status]string{
	StatusOK:              "ok",
	StatusUnknown:         "unknown error",
	StatusNotExist:        "does not exist",
	StatusNoParent:        "parent does not exist",
	StatusInvalidArgument: "invalid argument",
	StatusInvalidVLAN:     "invalid VLAN tag",
}

// Reason returns the human readable text for s
func (s Status) Reason() string {
	if r, ok := statusReasons[s]; ok {
		return r
	}
	return statusReasons[StatusUnknown]
}

func (s Status) String() string {
	return s.Reason()
}

// Error is a failed bridge operation
type Error struct {
	Status Status
	Cause  error
}

// NewError returns an error of the given status without a cause
func NewError(s Status) *Error {
	return &Error{Status: s}
}

// Wrap attaches status s to err
func Wrap(s Status, err error) *Error {
	return &Error{Status: s, Cause: err}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Status.Reason(), e.Cause)
	}
	return e.Status.Reason()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same status
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Cause == nil && t.Status == e.Status
}

// Sentinels for errors.Is
var (
	ErrUnknown         = NewError(StatusUnknown)
	ErrNotExist        = NewError(StatusNotExist)
	ErrNoParent        = NewError(StatusNoParent)
	ErrInvalidArgument = NewError(StatusInvalidArgument)
	ErrInvalidVLAN     = NewError(StatusInvalidVLAN)
)

// StatusOf extracts the status from err. Errors that carry no status are
// unknown.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusUnknown
}

// RPCStatus is the status code returned to bus clients. Values follow the
// ubus status codes netifd expects.
type RPCStatus int

const (
	RPCStatusOK RPCStatus = iota
	RPCStatusInvalidCommand
	RPCStatusInvalidArgument
	RPCStatusMethodNotFound
	RPCStatusNotFound
	RPCStatusNoData
	RPCStatusPermissionDenied
	RPCStatusTimeout
	RPCStatusNotSupported
	RPCStatusUnknownError
	RPCStatusConnectionFailed
)

var rpcStatusNames = []string{
	"Success",
	"Invalid command",
	"Invalid argument",
	"Method not found",
	"Not found",
	"No response",
	"Permission denied",
	"Request timed out",
	"Operation not supported",
	"Unknown error",
	"Connection failed",
}

func (s RPCStatus) String() string {
	if s < 0 || int(s) >= len(rpcStatusNames) {
		return rpcStatusNames[RPCStatusUnknownError]
	}
	return rpcStatusNames[s]
}
