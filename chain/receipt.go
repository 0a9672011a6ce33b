package chain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Fields holds the named arguments of an event.
type Fields map[string]any

// Event is a log emitted by a contract during a transaction.
type Event struct {
	Address common.Address
	Name    string
	Args    Fields
}

// Receipt records the outcome of a mined transaction. Reverted transactions are mined with
// Status ReceiptStatusFailed and carry no events.
type Receipt struct {
	TxHash      common.Hash
	From        common.Address
	To          common.Address
	Nonce       uint64
	BlockNumber uint64
	Timestamp   uint64
	Status      uint64
	Return      []byte
	Events      []Event
	Err         error
}

const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Event returns the first event with the given name.
func (r *Receipt) Event(name string) (Event, bool) {
	for _, e := range r.Events {
		if e.Name == name {
			return e, true
		}
	}

	return Event{}, false
}

// EventsNamed returns every event with the given name, in emission order.
func (r *Receipt) EventsNamed(name string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}

	return out
}

// EventNames returns the names of all events in emission order.
func (r *Receipt) EventNames() []string {
	names := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		names = append(names, e.Name)
	}

	return names
}
