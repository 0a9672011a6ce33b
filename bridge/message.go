package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind identifies the bridge carrying governance from mainnet to an L2.
type Kind uint8

const (
	KindArbitrum Kind = iota + 1
	KindPolygon
	KindScroll
)

func (k Kind) String() string {
	switch k {
	case KindArbitrum:
		return "arbitrum"
	case KindPolygon:
		return "polygon"
	case KindScroll:
		return "scroll"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Message is an outbound L1 to L2 message recorded by an L1 bridge endpoint.
type Message struct {
	Nonce    uint64
	Sender   common.Address
	Target   common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

// Outbox is implemented by L1 bridge endpoints.
type Outbox interface {
	Kind() Kind
	Messages() []Message
}
