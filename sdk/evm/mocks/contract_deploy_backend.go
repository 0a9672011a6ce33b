package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// ContractDeployBackend is a mock type for the ContractDeployBackend type
type ContractDeployBackend struct {
	mock.Mock
}

type ContractDeployBackend_Expecter struct {
	mock *mock.Mock
}

func (_m *ContractDeployBackend) EXPECT() *ContractDeployBackend_Expecter {
	return &ContractDeployBackend_Expecter{mock: &_m.Mock}
}

// CallContract provides a mock function with given fields: ctx, call, blockNumber
func (_m *ContractDeployBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ret := _m.Called(ctx, call, blockNumber)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, ethereum.CallMsg, *big.Int) []byte); ok {
		r0 = rf(ctx, call, blockNumber)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	if rf, ok := ret.Get(1).(func(context.Context, ethereum.CallMsg, *big.Int) error); ok {
		return r0, rf(ctx, call, blockNumber)
	}

	return r0, ret.Error(1)
}

// CallContract is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) CallContract(ctx any, call any, blockNumber any) *mock.Call {
	return _e.mock.On("CallContract", ctx, call, blockNumber)
}

// CodeAt provides a mock function with given fields: ctx, contract, blockNumber
func (_m *ContractDeployBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	ret := _m.Called(ctx, contract, blockNumber)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, common.Address, *big.Int) []byte); ok {
		r0 = rf(ctx, contract, blockNumber)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	if rf, ok := ret.Get(1).(func(context.Context, common.Address, *big.Int) error); ok {
		return r0, rf(ctx, contract, blockNumber)
	}

	return r0, ret.Error(1)
}

// CodeAt is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) CodeAt(ctx any, contract any, blockNumber any) *mock.Call {
	return _e.mock.On("CodeAt", ctx, contract, blockNumber)
}

// EstimateGas provides a mock function with given fields: ctx, call
func (_m *ContractDeployBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	ret := _m.Called(ctx, call)

	var r0 uint64
	if rf, ok := ret.Get(0).(func(context.Context, ethereum.CallMsg) uint64); ok {
		r0 = rf(ctx, call)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(uint64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, ethereum.CallMsg) error); ok {
		return r0, rf(ctx, call)
	}

	return r0, ret.Error(1)
}

// EstimateGas is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) EstimateGas(ctx any, call any) *mock.Call {
	return _e.mock.On("EstimateGas", ctx, call)
}

// FilterLogs provides a mock function with given fields: ctx, q
func (_m *ContractDeployBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	ret := _m.Called(ctx, q)

	var r0 []types.Log
	if rf, ok := ret.Get(0).(func(context.Context, ethereum.FilterQuery) []types.Log); ok {
		r0 = rf(ctx, q)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.Log)
	}

	if rf, ok := ret.Get(1).(func(context.Context, ethereum.FilterQuery) error); ok {
		return r0, rf(ctx, q)
	}

	return r0, ret.Error(1)
}

// FilterLogs is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) FilterLogs(ctx any, q any) *mock.Call {
	return _e.mock.On("FilterLogs", ctx, q)
}

// HeaderByNumber provides a mock function with given fields: ctx, number
func (_m *ContractDeployBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ret := _m.Called(ctx, number)

	var r0 *types.Header
	if rf, ok := ret.Get(0).(func(context.Context, *big.Int) *types.Header); ok {
		r0 = rf(ctx, number)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.Header)
	}

	if rf, ok := ret.Get(1).(func(context.Context, *big.Int) error); ok {
		return r0, rf(ctx, number)
	}

	return r0, ret.Error(1)
}

// HeaderByNumber is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) HeaderByNumber(ctx any, number any) *mock.Call {
	return _e.mock.On("HeaderByNumber", ctx, number)
}

// PendingCodeAt provides a mock function with given fields: ctx, account
func (_m *ContractDeployBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	ret := _m.Called(ctx, account)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, common.Address) []byte); ok {
		r0 = rf(ctx, account)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	if rf, ok := ret.Get(1).(func(context.Context, common.Address) error); ok {
		return r0, rf(ctx, account)
	}

	return r0, ret.Error(1)
}

// PendingCodeAt is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) PendingCodeAt(ctx any, account any) *mock.Call {
	return _e.mock.On("PendingCodeAt", ctx, account)
}

// PendingNonceAt provides a mock function with given fields: ctx, account
func (_m *ContractDeployBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ret := _m.Called(ctx, account)

	var r0 uint64
	if rf, ok := ret.Get(0).(func(context.Context, common.Address) uint64); ok {
		r0 = rf(ctx, account)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(uint64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, common.Address) error); ok {
		return r0, rf(ctx, account)
	}

	return r0, ret.Error(1)
}

// PendingNonceAt is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) PendingNonceAt(ctx any, account any) *mock.Call {
	return _e.mock.On("PendingNonceAt", ctx, account)
}

// SendTransaction provides a mock function with given fields: ctx, tx
func (_m *ContractDeployBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	ret := _m.Called(ctx, tx)

	if rf, ok := ret.Get(0).(func(context.Context, *types.Transaction) error); ok {
		return rf(ctx, tx)
	}

	return ret.Error(0)
}

// SendTransaction is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) SendTransaction(ctx any, tx any) *mock.Call {
	return _e.mock.On("SendTransaction", ctx, tx)
}

// SubscribeFilterLogs provides a mock function with given fields: ctx, q, ch
func (_m *ContractDeployBackend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	ret := _m.Called(ctx, q, ch)

	var r0 ethereum.Subscription
	if rf, ok := ret.Get(0).(func(context.Context, ethereum.FilterQuery, chan<- types.Log) ethereum.Subscription); ok {
		r0 = rf(ctx, q, ch)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(ethereum.Subscription)
	}

	if rf, ok := ret.Get(1).(func(context.Context, ethereum.FilterQuery, chan<- types.Log) error); ok {
		return r0, rf(ctx, q, ch)
	}

	return r0, ret.Error(1)
}

// SubscribeFilterLogs is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) SubscribeFilterLogs(ctx any, q any, ch any) *mock.Call {
	return _e.mock.On("SubscribeFilterLogs", ctx, q, ch)
}

// SuggestGasPrice provides a mock function with given fields: ctx
func (_m *ContractDeployBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ret := _m.Called(ctx)

	var r0 *big.Int
	if rf, ok := ret.Get(0).(func(context.Context) *big.Int); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		return r0, rf(ctx)
	}

	return r0, ret.Error(1)
}

// SuggestGasPrice is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) SuggestGasPrice(ctx any) *mock.Call {
	return _e.mock.On("SuggestGasPrice", ctx)
}

// SuggestGasTipCap provides a mock function with given fields: ctx
func (_m *ContractDeployBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	ret := _m.Called(ctx)

	var r0 *big.Int
	if rf, ok := ret.Get(0).(func(context.Context) *big.Int); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*big.Int)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		return r0, rf(ctx)
	}

	return r0, ret.Error(1)
}

// SuggestGasTipCap is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) SuggestGasTipCap(ctx any) *mock.Call {
	return _e.mock.On("SuggestGasTipCap", ctx)
}

// TransactionReceipt provides a mock function with given fields: ctx, txHash
func (_m *ContractDeployBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ret := _m.Called(ctx, txHash)

	var r0 *types.Receipt
	if rf, ok := ret.Get(0).(func(context.Context, common.Hash) *types.Receipt); ok {
		r0 = rf(ctx, txHash)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.Receipt)
	}

	if rf, ok := ret.Get(1).(func(context.Context, common.Hash) error); ok {
		return r0, rf(ctx, txHash)
	}

	return r0, ret.Error(1)
}

// TransactionReceipt is a helper method to define mock.On call
func (_e *ContractDeployBackend_Expecter) TransactionReceipt(ctx any, txHash any) *mock.Call {
	return _e.mock.On("TransactionReceipt", ctx, txHash)
}

// NewContractDeployBackend creates a new instance of ContractDeployBackend. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewContractDeployBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *ContractDeployBackend {
	m := &ContractDeployBackend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
