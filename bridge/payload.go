package bridge

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/internal/utils/abi"
	"github.com/dodao/comet-market-updates/types"
)

// PayloadTypes is the ABI tuple a bridge receiver decodes:
// (address[] targets, uint256[] values, string[] signatures, bytes[] calldatas).
var PayloadTypes = []string{"address[]", "uint256[]", "string[]", "bytes[]"}

// ErrEmptyPayload is returned when a payload carries no actions.
var ErrEmptyPayload = errors.New("bridge payload carries no actions")

// EncodeProposal encodes actions as the payload of an L2 governance proposal.
func EncodeProposal(actions types.Actions) ([]byte, error) {
	if len(actions) == 0 {
		return nil, ErrEmptyPayload
	}

	targets, values, signatures, calldatas := actions.Split()
	data, err := abi.Encode(PayloadTypes, targets, values, signatures, calldatas)
	if err != nil {
		return nil, fmt.Errorf("encode bridge payload: %w", err)
	}

	return data, nil
}

// DecodeProposal decodes an L2 governance proposal payload.
func DecodeProposal(data []byte) (types.Actions, error) {
	res, err := abi.Decode(PayloadTypes, data)
	if err != nil {
		return nil, fmt.Errorf("decode bridge payload: %w", err)
	}

	targets, ok1 := res[0].([]common.Address)
	values, ok2 := res[1].([]*big.Int)
	signatures, ok3 := res[2].([]string)
	calldatas, ok4 := res[3].([][]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("decode bridge payload: unexpected types %T %T %T %T", res[0], res[1], res[2], res[3])
	}

	return types.JoinActions(targets, values, signatures, calldatas)
}
