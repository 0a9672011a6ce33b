package abi

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Arguments builds unnamed abi.Arguments from canonical type names such as "address[]".
func Arguments(typeNames []string) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(typeNames))
	for _, name := range typeNames {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid abi type %q: %w", name, err)
		}
		args = append(args, abi.Argument{Type: typ})
	}

	return args, nil
}

// Encode packs values against a list of canonical type names.
func Encode(typeNames []string, values ...any) ([]byte, error) {
	args, err := Arguments(typeNames)
	if err != nil {
		return nil, err
	}

	return args.Pack(values...)
}

// Decode unpacks data against a list of canonical type names.
func Decode(typeNames []string, data []byte) ([]any, error) {
	args, err := Arguments(typeNames)
	if err != nil {
		return nil, err
	}

	return args.Unpack(data)
}
