package marketupdates

import (
	"errors"
	"fmt"

	"github.com/dodao/comet-market-updates/types"
)

var (
	// ErrNegativeValue is returned for an action forwarding a negative amount of wei.
	ErrNegativeValue = errors.New("negative action value")

	// ErrPayloadNotCarried is returned when no governance action sends the bridged proposal.
	ErrPayloadNotCarried = errors.New("bridged proposal is not carried by any action")
)

// UnsupportedVersionError is returned for a document written by an unknown version.
type UnsupportedVersionError struct {
	Version string
}

// NewUnsupportedVersionError creates a new UnsupportedVersionError.
func NewUnsupportedVersionError(version string) *UnsupportedVersionError {
	return &UnsupportedVersionError{Version: version}
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported proposal version %q, expected %q", e.Version, CurrentVersion)
}

// InvalidActionError is returned when an action of a proposal is malformed.
type InvalidActionError struct {
	Index int
	Err   error
}

// NewInvalidActionError creates a new InvalidActionError.
func NewInvalidActionError(index int, err error) *InvalidActionError {
	return &InvalidActionError{Index: index, Err: err}
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %d: %v", e.Index, e.Err)
}

func (e *InvalidActionError) Unwrap() error {
	return e.Err
}

// BridgedChainError is returned when a bridged proposal targets the governance chain itself.
type BridgedChainError struct {
	ChainSelector types.ChainSelector
}

// NewBridgedChainError creates a new BridgedChainError.
func NewBridgedChainError(sel types.ChainSelector) *BridgedChainError {
	return &BridgedChainError{ChainSelector: sel}
}

func (e *BridgedChainError) Error() string {
	return fmt.Sprintf("bridged proposal targets the governance chain %d", e.ChainSelector)
}
