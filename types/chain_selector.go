package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"errors"
	"fmt"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ChainSelector is a unique identifier for a chain.
//
// These values are defined in the chain-selectors dependency.
// https://github.com/smartcontractkit/chain-selectors
type ChainSelector uint64

var (
	// ErrChainFamilyNotFound is returned when the chain family is not found for a selector
	ErrChainFamilyNotFound = errors.New("chain family not found")

	// ErrUnsupportedChainFamily is returned when the selector does not belong to an EVM chain.
	// Every contract of the market update protocol lives on an EVM chain.
	ErrUnsupportedChainFamily = errors.New("unsupported chain family")
)

// GetChainSelectorFamily returns the family of the chain selector.
func GetChainSelectorFamily(sel ChainSelector) (string, error) {
	family, err := chainsel.GetSelectorFamily(uint64(sel))
	if err != nil {
		return "", fmt.Errorf("%w for selector %d", ErrChainFamilyNotFound, sel)
	}

	if family != chainsel.FamilyEVM {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedChainFamily, family)
	}

	return family, nil
}

// EVMChainID returns the EVM chain id of the selector.
func (s ChainSelector) EVMChainID() (uint64, error) {
	if _, err := GetChainSelectorFamily(s); err != nil {
		return 0, err
	}

	return chainsel.ChainIdFromSelector(uint64(s))
}

// Name returns the chain-selectors name of the chain, or the decimal selector when unknown.
func (s ChainSelector) Name() string {
	chain, ok := chainsel.ChainBySelector(uint64(s))
	if !ok {
		return fmt.Sprintf("%d", uint64(s))
	}

	return chain.Name
}
