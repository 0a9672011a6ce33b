package contracts_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodao/comet-market-updates/chain"
	"github.com/dodao/comet-market-updates/contracts"
	"github.com/dodao/comet-market-updates/types"
)

type proposerFixture struct {
	chain    *chain.Chain
	governor common.Address
	admin    common.Address
	guardian common.Address
	stranger common.Address
	timelock common.Address
	proposer common.Address
	target   common.Address
}

func newProposerFixture(t *testing.T) proposerFixture {
	t.Helper()

	c := newChain(t)
	f := proposerFixture{
		chain:    c,
		governor: c.NewAccount("governor"),
		admin:    c.NewAccount("market admin"),
		guardian: c.NewAccount("guardian"),
		stranger: c.NewAccount("stranger"),
	}

	mut, err := contracts.NewMarketUpdateTimelock(f.governor, types.MarketUpdateDelay)
	require.NoError(t, err)
	f.timelock = c.Deploy(f.governor, mut)

	mup, err := contracts.NewMarketUpdateProposer(f.governor, f.admin, f.guardian, f.timelock)
	require.NoError(t, err)
	f.proposer = c.Deploy(f.governor, mup)
	f.target = c.Deploy(f.governor, newRecorder())

	_, err = c.Send(t.Context(), f.governor, f.timelock, nil, "setMarketUpdateProposer(address)", f.proposer)
	require.NoError(t, err)

	return f
}

func (f proposerFixture) propose(t *testing.T, from common.Address, actions types.Actions) (*chain.Receipt, error) {
	t.Helper()

	targets, values, signatures, calldatas := actions.Split()

	return f.chain.Send(t.Context(), from, f.proposer, nil, propose, targets, values, signatures, calldatas, "update")
}

func (f proposerFixture) record(t *testing.T, v int64) types.Actions {
	t.Helper()

	a, err := types.NewAction(f.target, "record(uint256)", big.NewInt(v))
	require.NoError(t, err)

	return types.Actions{a}
}

func (f proposerFixture) state(t *testing.T, id int64) types.ProposalState {
	t.Helper()

	res, err := f.chain.Query(t.Context(), f.proposer, "state(uint256)", chain.Returns("uint8"), big.NewInt(id))
	require.NoError(t, err)

	return types.ProposalState(res[0].(uint8)) //nolint:forcetypeassert // decoded as uint8
}

func TestNewMarketUpdateProposer(t *testing.T) {
	t.Parallel()

	a := common.HexToAddress("0x1")
	tests := []struct {
		name  string
		addrs [4]common.Address
	}{
		{name: "zero governor", addrs: [4]common.Address{{}, a, a, a}},
		{name: "zero market admin", addrs: [4]common.Address{a, {}, a, a}},
		{name: "zero proposal guardian", addrs: [4]common.Address{a, a, {}, a}},
		{name: "zero timelock", addrs: [4]common.Address{a, a, a, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := contracts.NewMarketUpdateProposer(tt.addrs[0], tt.addrs[1], tt.addrs[2], tt.addrs[3])
			require.ErrorIs(t, err, contracts.ErrInvalidAddress)
		})
	}
}

func TestMarketUpdateProposer_Propose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    func(f proposerFixture) common.Address
		actions func(t *testing.T, f proposerFixture) types.Actions
		wantErr error
	}{
		{
			name:    "success",
			from:    func(f proposerFixture) common.Address { return f.admin },
			actions: func(t *testing.T, f proposerFixture) types.Actions { return f.record(t, 1) },
		},
		{
			name:    "failure: not the market admin",
			from:    func(f proposerFixture) common.Address { return f.governor },
			actions: func(t *testing.T, f proposerFixture) types.Actions { return f.record(t, 1) },
			wantErr: contracts.ErrUnauthorized,
		},
		{
			name:    "failure: no actions",
			from:    func(f proposerFixture) common.Address { return f.admin },
			actions: func(_ *testing.T, _ proposerFixture) types.Actions { return types.Actions{} },
			wantErr: contracts.ErrProposalNoActions,
		},
		{
			name: "failure: too many actions",
			from: func(f proposerFixture) common.Address { return f.admin },
			actions: func(t *testing.T, f proposerFixture) types.Actions {
				var as types.Actions
				for i := range types.MaxProposalActions + 1 {
					as = append(as, f.record(t, int64(i))...)
				}

				return as
			},
			wantErr: contracts.ErrProposalTooManyActions,
		},
		{
			name: "failure: duplicate action",
			from: func(f proposerFixture) common.Address { return f.admin },
			actions: func(t *testing.T, f proposerFixture) types.Actions {
				return append(f.record(t, 1), f.record(t, 1)...)
			},
			wantErr: contracts.ErrProposalDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newProposerFixture(t)
			receipt, err := f.propose(t, tt.from(f), tt.actions(t, f))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, queryUint(t, f.chain, f.proposer, "proposalCount()").Sign())

				return
			}

			require.NoError(t, err)
			created, ok := receipt.Event("MarketUpdateProposalCreated")
			require.True(t, ok)
			assert.Equal(t, big.NewInt(1), created.Args["id"])
			assert.Equal(t, f.admin, created.Args["proposer"])
			assert.Len(t, receipt.EventsNamed("QueueTransaction"), 1)
			assert.Equal(t, types.ProposalStateQueued, f.state(t, 1))
		})
	}
}

func TestMarketUpdateProposer_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	f := newProposerFixture(t)
	c := f.chain

	_, err := f.propose(t, f.admin, f.record(t, 99))
	require.NoError(t, err)

	_, err = c.Send(ctx, f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.ErrorIs(t, err, contracts.ErrTxTimelocked)

	c.IncreaseTime(types.MarketUpdateDelay.Duration)
	_, err = c.Send(ctx, f.stranger, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.ErrorIs(t, err, contracts.ErrUnauthorized)

	receipt, err := c.Send(ctx, f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.NoError(t, err)
	assert.Contains(t, receipt.EventNames(), "MarketUpdateProposalExecuted")
	assert.Equal(t, big.NewInt(99), queryUint(t, c, f.target, "value()"))
	assert.Equal(t, f.timelock, queryAddress(t, c, f.target, "caller()"))
	assert.Equal(t, types.ProposalStateExecuted, f.state(t, 1))

	_, err = c.Send(ctx, f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.ErrorIs(t, err, contracts.ErrProposalNotQueued)
	_, err = c.Send(ctx, f.admin, f.proposer, nil, "cancel(uint256)", big.NewInt(1))
	require.ErrorIs(t, err, contracts.ErrProposalExecuted)

	res, err := c.Query(ctx, f.proposer, "getProposal(uint256)",
		chain.Returns("uint256", "address", "address[]", "uint256[]", "string[]", "bytes[]", "string", "uint256", "bool", "bool"),
		big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, f.admin, res[1])
	assert.Equal(t, []common.Address{f.target}, res[2])
	assert.Equal(t, "update", res[6])
	assert.Equal(t, false, res[8])
	assert.Equal(t, true, res[9])

	_, err = c.Query(ctx, f.proposer, "state(uint256)", chain.Returns("uint8"), big.NewInt(2))
	require.ErrorIs(t, err, contracts.ErrProposalInvalidID)
}

func TestMarketUpdateProposer_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    func(f proposerFixture) common.Address
		wantErr error
	}{
		{name: "by market admin", from: func(f proposerFixture) common.Address { return f.admin }},
		{name: "by governor", from: func(f proposerFixture) common.Address { return f.governor }},
		{name: "by proposal guardian", from: func(f proposerFixture) common.Address { return f.guardian }},
		{
			name:    "failure: by stranger",
			from:    func(f proposerFixture) common.Address { return f.stranger },
			wantErr: contracts.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			f := newProposerFixture(t)
			_, err := f.propose(t, f.admin, f.record(t, 5))
			require.NoError(t, err)

			_, err = f.chain.Send(ctx, tt.from(f), f.proposer, nil, "cancel(uint256)", big.NewInt(1))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, types.ProposalStateQueued, f.state(t, 1))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, types.ProposalStateCanceled, f.state(t, 1))

			f.chain.IncreaseTime(types.MarketUpdateDelay.Duration)
			_, err = f.chain.Send(ctx, f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
			require.ErrorIs(t, err, contracts.ErrProposalNotQueued)

			// The canceled actions left the timelock, so they can be proposed again.
			_, err = f.propose(t, f.admin, f.record(t, 5))
			require.NoError(t, err)
		})
	}
}

func TestMarketUpdateProposer_Expired(t *testing.T) {
	t.Parallel()

	f := newProposerFixture(t)
	_, err := f.propose(t, f.admin, f.record(t, 5))
	require.NoError(t, err)

	f.chain.IncreaseTime(types.MarketUpdateDelay.Duration + types.GracePeriod.Duration + time.Minute)
	assert.Equal(t, types.ProposalStateExpired, f.state(t, 1))

	_, err = f.chain.Send(t.Context(), f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.ErrorIs(t, err, contracts.ErrProposalNotQueued)
}

func TestMarketUpdateProposer_ExpiresAfterGracePeriod(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	f := newProposerFixture(t)
	_, err := f.propose(t, f.admin, f.record(t, 5))
	require.NoError(t, err)

	res, err := f.chain.Query(ctx, f.proposer, "getProposal(uint256)",
		chain.Returns("uint256", "address", "address[]", "uint256[]", "string[]", "bytes[]", "string", "uint256", "bool", "bool"),
		big.NewInt(1))
	require.NoError(t, err)
	eta := res[7].(*big.Int).Uint64() //nolint:forcetypeassert // decoded as uint256

	last := eta + types.GracePeriod.Secs()
	f.chain.IncreaseTime(time.Duration(last-f.chain.Now()) * time.Second) //nolint:gosec // eta is in the future
	require.Equal(t, last, f.chain.Now())
	assert.Equal(t, types.ProposalStateQueued, f.state(t, 1), "the last second of the grace period")

	f.chain.IncreaseTime(time.Second)
	assert.Equal(t, types.ProposalStateExpired, f.state(t, 1))
}

func TestMarketUpdateProposer_ExecuteIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	f := newProposerFixture(t)

	fail, err := types.NewAction(f.target, "fail()")
	require.NoError(t, err)
	actions := append(f.record(t, 42), fail)

	_, err = f.propose(t, f.admin, actions)
	require.NoError(t, err)

	f.chain.IncreaseTime(types.MarketUpdateDelay.Duration)
	_, err = f.chain.Send(ctx, f.admin, f.proposer, nil, "execute(uint256)", big.NewInt(1))
	require.ErrorContains(t, err, "Transaction execution reverted")

	assert.Zero(t, queryUint(t, f.chain, f.target, "value()").Sign(), "the first action is rolled back")
	assert.Equal(t, types.ProposalStateQueued, f.state(t, 1))

	// The queued transactions survive the revert, so canceling still succeeds.
	_, err = f.chain.Send(ctx, f.admin, f.proposer, nil, "cancel(uint256)", big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, types.ProposalStateCanceled, f.state(t, 1))
}

func TestMarketUpdateProposer_GovernorSetters(t *testing.T) {
	t.Parallel()

	setters := []struct {
		signature string
		view      string
	}{
		{"setMarketAdmin(address)", "marketAdmin()"},
		{"setProposalGuardian(address)", "proposalGuardian()"},
		{"setPauseGuardian(address)", "pauseGuardian()"},
		{"setGovernor(address)", "governor()"},
	}

	for _, s := range setters {
		t.Run(s.signature, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			f := newProposerFixture(t)
			next := f.chain.NewAccount("next")

			_, err := f.chain.Send(ctx, f.stranger, f.proposer, nil, s.signature, next)
			require.ErrorIs(t, err, contracts.ErrUnauthorized)
			_, err = f.chain.Send(ctx, f.governor, f.proposer, nil, s.signature, common.Address{})
			require.ErrorIs(t, err, contracts.ErrInvalidAddress)

			_, err = f.chain.Send(ctx, f.governor, f.proposer, nil, s.signature, next)
			require.NoError(t, err)
			assert.Equal(t, next, queryAddress(t, f.chain, f.proposer, s.view))
		})
	}
}
