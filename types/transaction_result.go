package types

// TransactionResult describes a transaction submitted to a chain.
// RawData carries the backend specific receipt or transaction and should be cast by the caller.
type TransactionResult struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
	ChainFamily string `json:"chainFamily"`
	RawData     any    `json:"rawData,omitempty"`
}

// NewTransactionResult creates a new TransactionResult.
func NewTransactionResult(hash string, blockNumber uint64, family string, rawData any) TransactionResult {
	return TransactionResult{
		Hash:        hash,
		BlockNumber: blockNumber,
		ChainFamily: family,
		RawData:     rawData,
	}
}
