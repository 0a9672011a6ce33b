package chain

import (
	"errors"
	"fmt"
	"strings"
)

// RevertError is a require/revert with a string reason. Two RevertErrors match with errors.Is
// when their reasons are equal. A RevertError raised because a nested call failed keeps that
// failure as its cause.
type RevertError struct {
	Reason string
	Cause  error
}

// Revert creates a RevertError with the given reason.
func Revert(reason string) *RevertError {
	return &RevertError{Reason: reason}
}

// RevertWith creates a RevertError caused by err.
func RevertWith(reason string, err error) *RevertError {
	return &RevertError{Reason: reason, Cause: err}
}

func (e *RevertError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution reverted: %s: %v", e.Reason, e.Cause)
	}

	return "execution reverted: " + e.Reason
}

func (e *RevertError) Is(target error) bool {
	var t *RevertError
	if !errors.As(target, &t) {
		return false
	}

	return t.Reason == e.Reason
}

func (e *RevertError) Unwrap() error {
	return e.Cause
}

// CustomError is a Solidity custom error such as Unauthorized(). Two CustomErrors match with
// errors.Is when their names are equal, whatever their arguments.
type CustomError struct {
	Name string
	Args []any
}

// NewCustomError creates a CustomError with the given name and arguments.
func NewCustomError(name string, args ...any) *CustomError {
	return &CustomError{Name: name, Args: args}
}

func (e *CustomError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("execution reverted: custom error %s()", e.Name)
	}

	parts := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		parts = append(parts, fmt.Sprint(a))
	}

	return fmt.Sprintf("execution reverted: custom error %s(%s)", e.Name, strings.Join(parts, ","))
}

func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}

	return t.Name == e.Name
}

// IsRevert reports whether err is, or wraps, a contract level failure.
func IsRevert(err error) bool {
	var (
		r *RevertError
		c *CustomError
	)

	return errors.As(err, &r) || errors.As(err, &c)
}

var (
	// ErrUnknownSelector is raised when calldata names a function the contract does not have.
	ErrUnknownSelector = Revert("function selector was not recognized and there's no fallback function")

	// ErrNotPayable is raised when value is sent to a non payable function.
	ErrNotPayable = Revert("non-payable function was called with value")

	// ErrInvalidCalldata is raised when calldata cannot be decoded against the function inputs.
	ErrInvalidCalldata = Revert("invalid calldata")

	// ErrInsufficientBalance is raised when a call forwards more value than the caller holds.
	ErrInsufficientBalance = Revert("sender doesn't have enough funds to send tx")

	// ErrCallDepth is raised when nested calls exceed the EVM call depth limit.
	ErrCallDepth = Revert("max call depth exceeded")

	// ErrNoCode is raised by high level calls to an address without a contract.
	ErrNoCode = Revert("function call to a non-contract account")

	// ErrAddressInUse is returned when deploying at an address that already holds a contract.
	ErrAddressInUse = errors.New("address already holds a contract")
)
