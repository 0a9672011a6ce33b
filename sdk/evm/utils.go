package evm

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

type ContractDeployBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

var (
	// ErrTransactionFailed is returned when a submitted transaction was mined with a failed status.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrProposalCreatedNotFound is returned when a propose receipt carries no ProposalCreated log.
	ErrProposalCreatedNotFound = errors.New("ProposalCreated event not found in receipt")

	// ErrEmptyResult is returned when a view call returns no data, usually because the target
	// has no code.
	ErrEmptyResult = errors.New("empty call result")
)

// GovernorBravoABI is the part of the Compound Governor Bravo ABI used to submit proposals.
const GovernorBravoABI = `[
	{"type":"function","name":"propose","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"targets","type":"address[]"},
		{"name":"values","type":"uint256[]"},
		{"name":"signatures","type":"string[]"},
		{"name":"calldatas","type":"bytes[]"},
		{"name":"description","type":"string"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"ProposalCreated","anonymous":false,
	 "inputs":[
		{"name":"id","type":"uint256","indexed":false},
		{"name":"proposer","type":"address","indexed":false},
		{"name":"targets","type":"address[]","indexed":false},
		{"name":"values","type":"uint256[]","indexed":false},
		{"name":"signatures","type":"string[]","indexed":false},
		{"name":"calldatas","type":"bytes[]","indexed":false},
		{"name":"startBlock","type":"uint256","indexed":false},
		{"name":"endBlock","type":"uint256","indexed":false},
		{"name":"description","type":"string","indexed":false}]}
]`

var governorABI = mustParseABI(GovernorBravoABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}

	return parsed
}
