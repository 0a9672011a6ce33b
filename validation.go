package marketupdates

import (
	"bytes"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

// validateActions checks the action count and that every action with a signature carries
// calldata that decodes against it.
func validateActions(actions types.Actions) error {
	if err := actions.ValidateShape(); err != nil {
		return err
	}

	for i, a := range actions {
		if a.CallValue().Sign() < 0 {
			return NewInvalidActionError(i, ErrNegativeValue)
		}
		if a.Signature == "" {
			continue
		}
		if _, err := abi.DecodeArgs(a.Signature, a.Calldata); err != nil {
			return NewInvalidActionError(i, err)
		}
	}

	return nil
}

func (p *Proposal) validateBridged() error {
	b := p.Bridged
	if b.ChainSelector == p.ChainSelector {
		return NewBridgedChainError(b.ChainSelector)
	}
	if _, err := types.GetChainSelectorFamily(b.ChainSelector); err != nil {
		return err
	}
	if err := validateActions(b.Actions); err != nil {
		return err
	}

	payload, err := bridge.EncodeProposal(b.Actions)
	if err != nil {
		return err
	}
	// The payload is a dynamic bytes argument of the bridge call, so its encoding appears
	// verbatim in the calldata of the action sending it.
	for _, a := range p.Actions {
		if bytes.Contains(a.Calldata, payload) {
			return nil
		}
	}

	return ErrPayloadNotCarried
}
