package abi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the length in bytes of a function selector.
const SelectorLength = 4

var ErrInvalidSignature = errors.New("invalid function signature")

// Selector returns the first four bytes of keccak256(signature).
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:SelectorLength]
}

// ParseSignature splits a canonical signature like "propose(address[],uint256[])" into the
// function name and its top level parameter types.
func ParseSignature(signature string) (string, []string, error) {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
	}

	name := signature[:open]
	body := signature[open+1 : len(signature)-1]
	if body == "" {
		return name, nil, nil
	}

	var (
		params []string
		depth  int
		start  int
	)
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
			}
		case ',':
			if depth == 0 {
				params = append(params, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
	}
	params = append(params, body[start:])

	for _, p := range params {
		if p == "" || strings.ContainsAny(p, " \t") {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidSignature, signature)
		}
	}

	return name, params, nil
}

// EncodeArgs ABI encodes values against the parameter types of signature, without the selector.
// This is the calldata form carried by governance proposals.
func EncodeArgs(signature string, values ...any) ([]byte, error) {
	_, params, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	if len(params) != len(values) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", signature, len(params), len(values))
	}

	return Encode(params, values...)
}

// DecodeArgs decodes selector-less calldata against the parameter types of signature.
func DecodeArgs(signature string, data []byte) ([]any, error) {
	_, params, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}

	return Decode(params, data)
}

// EncodeCall returns selector(signature) ++ abi.encode(values...).
func EncodeCall(signature string, values ...any) ([]byte, error) {
	data, err := EncodeArgs(signature, values...)
	if err != nil {
		return nil, err
	}

	return Calldata(signature, data), nil
}

// Calldata prefixes data with the selector of signature. An empty signature means data already
// is the full calldata.
func Calldata(signature string, data []byte) []byte {
	if signature == "" {
		return data
	}

	out := make([]byte, 0, SelectorLength+len(data))
	out = append(out, Selector(signature)...)

	return append(out, data...)
}
