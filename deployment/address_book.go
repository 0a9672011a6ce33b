package deployment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dodao/comet-market-updates/types"
)

var (
	ErrInvalidChainSelector = errors.New("invalid chain selector")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrChainNotFound        = errors.New("chain not found")
	ErrContractNotFound     = errors.New("contract not found")
	ErrAmbiguousContract    = errors.New("more than one contract matches")
)

// ContractType identifies the kind of contract an address holds.
type ContractType string

func (ct ContractType) String() string {
	return string(ct)
}

// TypeAndVersion describes an address book entry.
type TypeAndVersion struct {
	Type    ContractType   `json:"Type"`
	Version semver.Version `json:"Version"`
	Labels  LabelSet       `json:"Labels,omitempty"`
}

// NewTypeAndVersion returns an entry with no labels.
func NewTypeAndVersion(t ContractType, v semver.Version, labels ...string) TypeAndVersion {
	return TypeAndVersion{Type: t, Version: v, Labels: NewLabelSet(labels...)}
}

func (tv TypeAndVersion) String() string {
	if tv.Labels.Len() == 0 {
		return fmt.Sprintf("%s %s", tv.Type, tv.Version.String())
	}

	return fmt.Sprintf("%s %s %s", tv.Type, tv.Version.String(), tv.Labels.String())
}

// Equal compares type, version and labels.
func (tv TypeAndVersion) Equal(other TypeAndVersion) bool {
	return tv.Type == other.Type && tv.Version.Equal(&other.Version) && tv.Labels.Equal(other.Labels)
}

// TypeAndVersionFromString parses "Type 1.2.3 label...".
func TypeAndVersionFromString(s string) (TypeAndVersion, error) {
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return TypeAndVersion{}, fmt.Errorf("invalid type and version string: %q", s)
	}
	v, err := semver.NewVersion(parts[1])
	if err != nil {
		return TypeAndVersion{}, fmt.Errorf("invalid version in %q: %w", s, err)
	}

	return NewTypeAndVersion(ContractType(parts[0]), *v, parts[2:]...), nil
}

// MustTypeAndVersionFromString is TypeAndVersionFromString for literals.
func MustTypeAndVersionFromString(s string) TypeAndVersion {
	tv, err := TypeAndVersionFromString(s)
	if err != nil {
		panic(err)
	}

	return tv
}

// AddressBook stores contract addresses per chain selector. EVM addresses are kept in EIP-55
// form.
type AddressBook interface {
	Save(sel types.ChainSelector, address string, tv TypeAndVersion) error
	Addresses() (map[types.ChainSelector]AddressesByType, error)
	AddressesForChain(sel types.ChainSelector) (AddressesByType, error)
	Merge(other AddressBook) error
}

// AddressesByType maps an EIP-55 address to its entry.
type AddressesByType map[string]TypeAndVersion

var _ AddressBook = (*AddressBookMap)(nil)

// AddressBookMap is an in memory AddressBook with entries kept in sorted order.
type AddressBookMap struct {
	addressesByChain *treemap.Map // types.ChainSelector (as uint64) -> *treemap.Map[string]TypeAndVersion
	mu               sync.RWMutex
}

// NewMemoryAddressBook returns an empty address book.
func NewMemoryAddressBook() *AddressBookMap {
	return &AddressBookMap{addressesByChain: treemap.NewWith(utils.UInt64Comparator)}
}

// NewMemoryAddressBookFromMap returns an address book holding addresses. Entries are
// validated the way Save validates them.
func NewMemoryAddressBookFromMap(addresses map[types.ChainSelector]AddressesByType) (*AddressBookMap, error) {
	ab := NewMemoryAddressBook()
	for sel, byAddr := range addresses {
		for addr, tv := range byAddr {
			if err := ab.save(sel, addr, tv); err != nil {
				return nil, err
			}
		}
	}

	return ab, nil
}

func (m *AddressBookMap) save(sel types.ChainSelector, address string, tv TypeAndVersion) error {
	if _, err := types.GetChainSelectorFamily(sel); err != nil {
		return fmt.Errorf("chain selector %d: %w: %w", sel, ErrInvalidChainSelector, err)
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("address %q is not a valid ethereum address: %w", address, ErrInvalidAddress)
	}
	if common.HexToAddress(address) == (common.Address{}) {
		return fmt.Errorf("address cannot be zero: %w", ErrInvalidAddress)
	}
	address = common.HexToAddress(address).Hex()

	if tv.Type == "" {
		return errors.New("type cannot be empty")
	}

	chainAddresses, ok := m.addressesByChain.Get(uint64(sel))
	if !ok {
		chainAddresses = treemap.NewWithStringComparator()
		m.addressesByChain.Put(uint64(sel), chainAddresses)
	}

	byAddr := chainAddresses.(*treemap.Map) //nolint:forcetypeassert // only *treemap.Map is stored
	if _, exists := byAddr.Get(address); exists {
		return fmt.Errorf("address %s already exists for chain %s", address, sel.Name())
	}
	byAddr.Put(address, tv)

	return nil
}

// Save stores address on chain sel. It fails on a conflicting existing address.
func (m *AddressBookMap) Save(sel types.ChainSelector, address string, tv TypeAndVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save(sel, address, tv)
}

// Addresses returns every entry, grouped by chain.
func (m *AddressBookMap) Addresses() (map[types.ChainSelector]AddressesByType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[types.ChainSelector]AddressesByType, m.addressesByChain.Size())
	it := m.addressesByChain.Iterator()
	for it.Next() {
		result[types.ChainSelector(it.Key().(uint64))] = toAddresses(it.Value().(*treemap.Map)) //nolint:forcetypeassert // keys and values are typed on insert
	}

	return result, nil
}

// AddressesForChain returns the entries of chain sel.
func (m *AddressBookMap) AddressesForChain(sel types.ChainSelector) (AddressesByType, error) {
	if _, err := sel.EVMChainID(); err != nil {
		return nil, fmt.Errorf("chain selector %d: %w: %w", sel, ErrInvalidChainSelector, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	chainAddresses, ok := m.addressesByChain.Get(uint64(sel))
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", sel.Name(), ErrChainNotFound)
	}

	return toAddresses(chainAddresses.(*treemap.Map)), nil //nolint:forcetypeassert // only *treemap.Map is stored
}

// Merge saves every entry of other into m, failing on any conflict.
func (m *AddressBookMap) Merge(other AddressBook) error {
	addresses, err := other.Addresses()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for sel, byAddr := range addresses {
		for addr, tv := range byAddr {
			if err := m.save(sel, addr, tv); err != nil {
				return err
			}
		}
	}

	return nil
}

func toAddresses(byAddr *treemap.Map) AddressesByType {
	out := make(AddressesByType, byAddr.Size())
	it := byAddr.Iterator()
	for it.Next() {
		out[it.Key().(string)] = it.Value().(TypeAndVersion) //nolint:forcetypeassert // typed on insert
	}

	return out
}

// Find returns the address of the single contract of type typ on chain sel carrying every
// label in labels.
func Find(ab AddressBook, sel types.ChainSelector, typ ContractType, labels ...string) (common.Address, error) {
	addrs, err := ab.AddressesForChain(sel)
	if err != nil {
		return common.Address{}, err
	}

	var matches []string
	for addr, tv := range addrs {
		if tv.Type != typ || !hasLabels(tv.Labels, labels) {
			continue
		}
		matches = append(matches, addr)
	}
	slices.Sort(matches)

	switch len(matches) {
	case 0:
		return common.Address{}, fmt.Errorf("%s %v on %s: %w", typ, labels, sel.Name(), ErrContractNotFound)
	case 1:
		return common.HexToAddress(matches[0]), nil
	default:
		return common.Address{}, fmt.Errorf("%s %v on %s: %w: %v", typ, labels, sel.Name(), ErrAmbiguousContract, matches)
	}
}

func hasLabels(set LabelSet, labels []string) bool {
	for _, l := range labels {
		if !set.Contains(l) {
			return false
		}
	}

	return true
}
