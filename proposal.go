// Package marketupdates holds the governance proposal documents produced by the market updates
// migrations: the actions a governor votes on and, for bridged networks, the L2 proposal they
// carry.
package marketupdates

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"

	"github.com/dodao/comet-market-updates/bridge"
	"github.com/dodao/comet-market-updates/contracts"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

// CurrentVersion is the proposal document version written by this package.
const CurrentVersion = "v1"

// ProposeSignature is the governor entry point a proposal is submitted through.
const ProposeSignature = "propose(address[],uint256[],string[],bytes[],string)"

var validate = validator.New()

// Proposal is a governance proposal for one migration. ChainSelector is the chain of the
// governor voting on it.
type Proposal struct {
	Version       string              `json:"version" validate:"required"`
	Migration     string              `json:"migration" validate:"required"`
	Network       string              `json:"network" validate:"required"`
	ChainSelector types.ChainSelector `json:"chainSelector" validate:"required"`
	Description   string              `json:"description" validate:"required"`
	Actions       types.Actions       `json:"actions" validate:"required,min=1,dive"`

	// Bridged is the L2 proposal carried by Actions, set for networks governed from mainnet.
	Bridged *BridgedProposal `json:"bridged,omitempty"`
}

// BridgedProposal is the proposal a bridge receiver queues on the L2 once the governance
// actions have run.
type BridgedProposal struct {
	Bridge        string              `json:"bridge" validate:"required,oneof=arbitrum polygon scroll"`
	ChainSelector types.ChainSelector `json:"chainSelector" validate:"required"`
	Receiver      common.Address      `json:"receiver" validate:"required"`
	Actions       types.Actions       `json:"actions" validate:"required,min=1,dive"`
}

// NewProposal decodes and validates a proposal document.
func NewProposal(reader io.Reader) (*Proposal, error) {
	var out Proposal
	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		return nil, err
	}

	return &out, nil
}

// MarshalJSON validates the proposal before encoding it.
func (p *Proposal) MarshalJSON() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	type Alias Proposal

	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON decodes the proposal and validates it.
func (p *Proposal) UnmarshalJSON(data []byte) error {
	type Alias Proposal
	if err := json.Unmarshal(data, (*Alias)(p)); err != nil {
		return err
	}

	return p.Validate()
}

// Validate runs the tag based checks, then checks every action decodes against its signature
// and that a bridged proposal is the one the governance actions carry.
func (p *Proposal) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Version != CurrentVersion {
		return NewUnsupportedVersionError(p.Version)
	}
	if _, err := types.GetChainSelectorFamily(p.ChainSelector); err != nil {
		return err
	}
	if err := validateActions(p.Actions); err != nil {
		return err
	}

	if p.Bridged == nil {
		return nil
	}

	return p.validateBridged()
}

// Calldata returns the governor propose call of the proposal.
func (p *Proposal) Calldata() ([]byte, error) {
	targets, values, signatures, calldatas := p.Actions.Split()

	return abi.EncodeCall(ProposeSignature, targets, values, signatures, calldatas, p.Description)
}

// CalldataHash is the keccak256 of Calldata. Reviewers compare it against the transaction
// submitted to the governor.
func (p *Proposal) CalldataHash() (common.Hash, error) {
	data, err := p.Calldata()
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(data), nil
}

// TimelockTxHashes returns the keys the governance timelock queues the actions under when the
// proposal is queued with eta.
func (p *Proposal) TimelockTxHashes(eta *big.Int) ([]common.Hash, error) {
	return txHashes(p.Actions, eta)
}

// Payload returns the encoded L2 proposal, or nil for a proposal that is not bridged.
func (p *Proposal) Payload() ([]byte, error) {
	if p.Bridged == nil {
		return nil, nil
	}

	return bridge.EncodeProposal(p.Bridged.Actions)
}

// TimelockTxHashes returns the keys the L2 timelock queues the bridged actions under.
func (b *BridgedProposal) TimelockTxHashes(eta *big.Int) ([]common.Hash, error) {
	return txHashes(b.Actions, eta)
}

func txHashes(actions types.Actions, eta *big.Int) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(actions))
	for i, a := range actions {
		h, err := contracts.TxHash(a.Target, a.CallValue(), a.Signature, a.Calldata, eta)
		if err != nil {
			return nil, fmt.Errorf("hash action %d: %w", i, err)
		}
		hashes = append(hashes, h)
	}

	return hashes, nil
}
