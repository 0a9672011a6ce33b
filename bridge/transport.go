package bridge

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/dodao/comet-market-updates/types"
)

const (
	// ArbitrumCreateRetryableTicket is the Arbitrum inbox entry point used for governance.
	ArbitrumCreateRetryableTicket = "createRetryableTicket(address,uint256,uint256,address,address,uint256,uint256,bytes)"

	// PolygonSendMessageToChild is the FxRoot entry point used for governance.
	PolygonSendMessageToChild = "sendMessageToChild(address,bytes)"

	// ScrollSendMessage is the Scroll L1 messenger entry point used for governance.
	ScrollSendMessage = "sendMessage(address,uint256,bytes,uint256)"
)

const (
	// DefaultScrollGasLimit is the L2 gas limit of a Scroll governance message.
	DefaultScrollGasLimit = 6_000_000
)

// DefaultScrollFee is the value sent with a Scroll governance message to pay for L2 execution.
var DefaultScrollFee = new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil) // 0.1 ether

var validate = validator.New()

// Transport turns an L2 proposal payload into the mainnet action that carries it.
type Transport interface {
	Kind() Kind
	Wrap(ctx context.Context, receiver common.Address, payload []byte) (types.Action, error)
}

// GasParams are the retryable ticket parameters of an Arbitrum message.
type GasParams struct {
	MaxSubmissionCost *big.Int `validate:"required"`
	GasLimit          *big.Int `validate:"required"`
	MaxFeePerGas      *big.Int `validate:"required"`
}

// Deposit is the value that must accompany the ticket: maxSubmissionCost + gasLimit * maxFeePerGas.
func (p GasParams) Deposit() *big.Int {
	fee := new(big.Int).Mul(p.GasLimit, p.MaxFeePerGas)
	return fee.Add(fee, p.MaxSubmissionCost)
}

// RetryableEstimator estimates the ticket parameters for delivering data to `to` on Arbitrum.
type RetryableEstimator interface {
	EstimateRetryable(ctx context.Context, to common.Address, data []byte) (GasParams, error)
}

// StaticEstimator always returns the same parameters.
type StaticEstimator GasParams

// EstimateRetryable implements RetryableEstimator.
func (s StaticEstimator) EstimateRetryable(_ context.Context, _ common.Address, _ []byte) (GasParams, error) {
	return GasParams(s), nil
}

// DefaultArbitrumGasParams is a conservative static estimate for a governance retryable.
var DefaultArbitrumGasParams = GasParams{
	MaxSubmissionCost: big.NewInt(1_000_000_000_000_000), // 0.001 ether
	GasLimit:          big.NewInt(2_000_000),
	MaxFeePerGas:      big.NewInt(100_000_000), // 0.1 gwei
}

// ArbitrumTransport sends the payload as a retryable ticket through the delayed inbox. Excess
// fees and call value are refunded to RefundAddress, the L2 timelock.
type ArbitrumTransport struct {
	Inbox         common.Address     `validate:"required"`
	RefundAddress common.Address     `validate:"required"`
	Estimator     RetryableEstimator `validate:"required"`
}

var _ Transport = ArbitrumTransport{}

// Kind implements Transport.
func (ArbitrumTransport) Kind() Kind { return KindArbitrum }

// Wrap implements Transport.
func (t ArbitrumTransport) Wrap(ctx context.Context, receiver common.Address, payload []byte) (types.Action, error) {
	if err := validate.Struct(t); err != nil {
		return types.Action{}, fmt.Errorf("arbitrum transport: %w", err)
	}

	gas, err := t.Estimator.EstimateRetryable(ctx, receiver, payload)
	if err != nil {
		return types.Action{}, fmt.Errorf("estimate retryable ticket: %w", err)
	}
	if err := validate.Struct(gas); err != nil {
		return types.Action{}, fmt.Errorf("retryable ticket gas params: %w", err)
	}

	// to, l2CallValue, maxSubmissionCost, excessFeeRefundAddress, callValueRefundAddress,
	// gasLimit, maxFeePerGas, data
	action, err := types.NewAction(t.Inbox, ArbitrumCreateRetryableTicket,
		receiver, new(big.Int), gas.MaxSubmissionCost, t.RefundAddress, t.RefundAddress,
		gas.GasLimit, gas.MaxFeePerGas, payload)
	if err != nil {
		return types.Action{}, err
	}

	return action.WithValue(gas.Deposit()), nil
}

// PolygonTransport sends the payload through the FxRoot state sync tunnel.
type PolygonTransport struct {
	FxRoot common.Address `validate:"required"`
}

var _ Transport = PolygonTransport{}

// Kind implements Transport.
func (PolygonTransport) Kind() Kind { return KindPolygon }

// Wrap implements Transport.
func (t PolygonTransport) Wrap(_ context.Context, receiver common.Address, payload []byte) (types.Action, error) {
	if err := validate.Struct(t); err != nil {
		return types.Action{}, fmt.Errorf("polygon transport: %w", err)
	}

	return types.NewAction(t.FxRoot, PolygonSendMessageToChild, receiver, payload)
}

// ScrollTransport sends the payload through the Scroll L1 messenger. A zero GasLimit or a nil
// Fee use the defaults.
type ScrollTransport struct {
	Messenger common.Address `validate:"required"`
	GasLimit  uint64
	Fee       *big.Int
}

var _ Transport = ScrollTransport{}

// Kind implements Transport.
func (ScrollTransport) Kind() Kind { return KindScroll }

// Wrap implements Transport.
func (t ScrollTransport) Wrap(_ context.Context, receiver common.Address, payload []byte) (types.Action, error) {
	if err := validate.Struct(t); err != nil {
		return types.Action{}, fmt.Errorf("scroll transport: %w", err)
	}

	gasLimit := t.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultScrollGasLimit
	}
	fee := t.Fee
	if fee == nil {
		fee = DefaultScrollFee
	}

	action, err := types.NewAction(t.Messenger, ScrollSendMessage,
		receiver, new(big.Int), payload, new(big.Int).SetUint64(gasLimit))
	if err != nil {
		return types.Action{}, err
	}

	return action.WithValue(fee), nil
}
