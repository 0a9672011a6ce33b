package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/internal/utils/abi"
)

// PolygonStateSyncer is the system account that delivers state sync messages on Polygon.
var PolygonStateSyncer = common.HexToAddress("0x0000000000000000000000000000000000001001")

// FxStateTypes is the ABI layout of the data FxRoot syncs: (rootMessageSender, receiver, data).
var FxStateTypes = []string{"address", "address", "bytes"}

var (
	// ErrNotOutbox is returned when the L1 endpoint does not record outbound messages.
	ErrNotOutbox = errors.New("l1 endpoint is not a bridge outbox")

	// ErrRelayFailed is returned when a relayed message failed on L2 without reverting the relay.
	ErrRelayFailed = errors.New("relayed message failed on l2")
)

// RelayerConfig wires a relayer between two ledgers.
type RelayerConfig struct {
	L1 *chain.Chain `validate:"required"`
	L2 *chain.Chain `validate:"required"`

	// Endpoint is the L1 bridge endpoint whose outbox is relayed.
	Endpoint common.Address `validate:"required"`

	// L2Endpoint is FxChild on Polygon and the L2 messenger on Scroll.
	L2Endpoint common.Address

	Logger *zap.Logger
}

// Relayer carries the messages recorded by an L1 bridge endpoint to the L2 ledger, as the
// bridge itself would.
type Relayer struct {
	cfg     RelayerConfig
	lg      *zap.SugaredLogger
	relayed int
}

// NewRelayer validates cfg and returns a relayer.
func NewRelayer(cfg RelayerConfig) (*Relayer, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("relayer config: %w", err)
	}
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	return &Relayer{cfg: cfg, lg: lg.Sugar()}, nil
}

func (r *Relayer) outbox() (Outbox, error) {
	code, ok := r.cfg.L1.Contract(r.cfg.Endpoint)
	if !ok {
		return nil, fmt.Errorf("%w: no contract at %s", ErrNotOutbox, r.cfg.Endpoint.Hex())
	}
	out, ok := code.(Outbox)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotOutbox, code)
	}

	return out, nil
}

// Pending returns the messages recorded on L1 but not yet relayed.
func (r *Relayer) Pending() ([]Message, error) {
	out, err := r.outbox()
	if err != nil {
		return nil, err
	}

	msgs := out.Messages()
	if r.relayed >= len(msgs) {
		return nil, nil
	}

	return msgs[r.relayed:], nil
}

// Relay delivers every pending message and returns the L2 receipts.
func (r *Relayer) Relay(ctx context.Context) ([]*chain.Receipt, error) {
	out, err := r.outbox()
	if err != nil {
		return nil, err
	}
	pending, err := r.Pending()
	if err != nil {
		return nil, err
	}

	receipts := make([]*chain.Receipt, 0, len(pending))
	for _, msg := range pending {
		receipt, err := r.deliver(ctx, out.Kind(), msg)
		if err != nil {
			return receipts, fmt.Errorf("relay %s message %d to %s: %w", out.Kind(), msg.Nonce, msg.Target.Hex(), err)
		}
		r.relayed++
		receipts = append(receipts, receipt)
		r.lg.Infow("relayed bridge message",
			"bridge", out.Kind().String(), "nonce", msg.Nonce, "target", msg.Target.Hex(), "l2Block", receipt.BlockNumber)
	}

	return receipts, nil
}

func (r *Relayer) deliver(ctx context.Context, kind Kind, msg Message) (*chain.Receipt, error) {
	switch kind {
	case KindArbitrum:
		return r.cfg.L2.SendRaw(ctx, ApplyL1ToL2Alias(msg.Sender), msg.Target, msg.Value, msg.Data)
	case KindPolygon:
		data, err := abi.Encode(FxStateTypes, msg.Sender, msg.Target, msg.Data)
		if err != nil {
			return nil, err
		}

		return r.cfg.L2.Send(ctx, PolygonStateSyncer, r.cfg.L2Endpoint, nil,
			"onStateReceive(uint256,bytes)", new(big.Int).SetUint64(msg.Nonce), data)
	case KindScroll:
		receipt, err := r.cfg.L2.Send(ctx, ApplyL1ToL2Alias(r.cfg.Endpoint), r.cfg.L2Endpoint, nil,
			"relayMessage(address,address,uint256,uint256,bytes)",
			msg.Sender, msg.Target, msg.Value, new(big.Int).SetUint64(msg.Nonce), msg.Data)
		if err != nil {
			return receipt, err
		}
		if failed, ok := receipt.Event("FailedRelayedMessage"); ok {
			return receipt, fmt.Errorf("%w: %v", ErrRelayFailed, failed.Args["error"])
		}

		return receipt, nil
	default:
		return nil, fmt.Errorf("unsupported bridge %s", kind)
	}
}
