package multisig

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
	"github.com/gatework/gate/orm"
)

const (
	// To avoid burning CPU, this is the maximum number of members
	// allowed in a single group.
	maxMembers = 100

	// maxCallAccounts caps the access descriptor list of a call.
	maxCallAccounts = 32

	// maxPayloadSize caps the opaque payload of a call.
	maxPayloadSize = 8192
)

var _ orm.Model = (*Multisig)(nil)
var _ orm.Model = (*Proposal)(nil)

// MultisigCondition derives the condition of a group from its creation
// seeds. Its address is where the group is stored, and presenting this
// condition is how a forwarded call is signed as the group.
func MultisigCondition(creator gate.Address, nonce uint8) gate.Condition {
	data := make([]byte, 0, len(creator)+1)
	data = append(data, creator...)
	data = append(data, nonce)
	return gate.NewCondition("multisig", "seed", data)
}

// ProposalCondition derives the condition of a proposal from the
// owning group's address and the counter value at creation time. The
// counter is never reused, so no proposal can alias the address of an
// earlier one.
func ProposalCondition(multisig gate.Address, seq uint64) gate.Condition {
	data := make([]byte, len(multisig)+8)
	copy(data, multisig)
	binary.BigEndian.PutUint64(data[len(multisig):], seq)
	return gate.NewCondition("multisig", "proposal", data)
}

// Validate ensures the group is in a storable state.
func (m *Multisig) Validate() error {
	if err := m.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if err := validateMemberSet(m.Members); err != nil {
		return err
	}
	if m.Threshold == 0 || int(m.Threshold) > len(m.Members) {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d members", m.Threshold, len(m.Members))
	}
	if err := m.AddressProof.Validate(); err != nil {
		return errors.Wrap(err, "address proof")
	}
	return nil
}

// Address returns the derived address this group is stored under.
func (m *Multisig) Address() gate.Address {
	return m.AddressProof.Address()
}

// IsMember checks membership of an address in the sorted member set.
func (m *Multisig) IsMember(addr gate.Address) bool {
	return containsAddress(m.Members, addr)
}

// Validate ensures the proposal is in a storable state.
func (p *Proposal) Validate() error {
	if err := p.Multisig.Validate(); err != nil {
		return errors.Wrap(err, "multisig")
	}
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if err := p.Call.Validate(); err != nil {
		return errors.Wrap(err, "call")
	}
	if err := validateAddressSet(p.Approvals); err != nil {
		return errors.Wrap(err, "approvals")
	}
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if err := p.AddressProof.Validate(); err != nil {
		return errors.Wrap(err, "address proof")
	}
	return nil
}

// HasApproved checks if the member already approved this proposal.
func (p *Proposal) HasApproved(addr gate.Address) bool {
	return containsAddress(p.Approvals, addr)
}

// Validate ensures the call descriptor can be stored and later
// reconstructed into an invocation.
func (c *CallDescriptor) Validate() error {
	if err := c.Target.Validate(); err != nil {
		return errors.Wrap(err, "target")
	}
	if len(c.Accounts) > maxCallAccounts {
		return errors.Wrapf(errors.ErrInput, "too many accounts: %d", len(c.Accounts))
	}
	for i, a := range c.Accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	if len(c.Payload) > maxPayloadSize {
		return errors.Wrapf(errors.ErrInput, "payload size: %d", len(c.Payload))
	}
	return nil
}

// Validate returns an error when the status holds a value outside of
// the lifecycle.
func (s ProposalStatus) Validate() error {
	if s < ProposalStatusPending || s > ProposalStatusCancelled {
		return errors.Wrapf(errors.ErrState, "status %d", s)
	}
	return nil
}

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusPending:
		return "pending"
	case ProposalStatusExecuted:
		return "executed"
	case ProposalStatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("invalid (%d)", uint8(s))
	}
}

// normalizeMembers sorts the given addresses and removes duplicates,
// returning the canonical member set representation.
func normalizeMembers(members []gate.Address) []gate.Address {
	cpy := make([]gate.Address, len(members))
	copy(cpy, members)
	sort.Slice(cpy, func(i, j int) bool {
		return bytes.Compare(cpy[i], cpy[j]) < 0
	})

	dedup := cpy[:0]
	for _, m := range cpy {
		if len(dedup) == 0 || !dedup[len(dedup)-1].Equals(m) {
			dedup = append(dedup, m)
		}
	}
	return dedup
}

// validateMemberSet ensures a canonical, non-empty member set.
func validateMemberSet(members []gate.Address) error {
	switch n := len(members); {
	case n == 0:
		return errors.Wrap(ErrInvalidMembers, "no members")
	case n > maxMembers:
		return errors.Wrap(ErrInvalidMembers, "too many members")
	}
	if err := validateAddressSet(members); err != nil {
		return errors.Wrap(ErrInvalidMembers, err.Error())
	}
	return nil
}

// validateAddressSet ensures the addresses form a strictly increasing
// sequence of valid addresses.
func validateAddressSet(addrs []gate.Address) error {
	for i, a := range addrs {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "address #%d", i)
		}
		if i > 0 && bytes.Compare(addrs[i-1], a) >= 0 {
			return errors.Wrapf(errors.ErrInput, "not sorted or duplicate at #%d", i)
		}
	}
	return nil
}

// containsAddress does a binary search in a sorted address set.
func containsAddress(set []gate.Address, addr gate.Address) bool {
	i := sort.Search(len(set), func(i int) bool {
		return bytes.Compare(set[i], addr) >= 0
	})
	return i < len(set) && set[i].Equals(addr)
}

// insertAddress adds an address into a sorted set, keeping it sorted.
// Inserting a present address is a noop.
func insertAddress(set []gate.Address, addr gate.Address) []gate.Address {
	i := sort.Search(len(set), func(i int) bool {
		return bytes.Compare(set[i], addr) >= 0
	})
	if i < len(set) && set[i].Equals(addr) {
		return set
	}
	set = append(set, nil)
	copy(set[i+1:], set[i:])
	set[i] = addr
	return set
}

// distinctApprovals recomputes the number of distinct approvers. The
// stored set is duplicate free by construction, but the quorum
// decision must not trust the stored length.
func distinctApprovals(p *Proposal) int {
	distinct := 0
	for i, a := range p.Approvals {
		if i == 0 || !p.Approvals[i-1].Equals(a) {
			distinct++
		}
	}
	return distinct
}

// Executable is the quorum predicate: true iff the distinct approvals
// of the proposal meet the group's threshold. It has no side effects.
func Executable(m *Multisig, p *Proposal) bool {
	return distinctApprovals(p) >= int(m.Threshold)
}

// MultisigBucket is a type-safe wrapper around the group storage.
type MultisigBucket struct {
	orm.ModelBucket
}

// NewMultisigBucket initializes a MultisigBucket with the default
// prefix.
func NewMultisigBucket() MultisigBucket {
	return MultisigBucket{
		ModelBucket: orm.NewModelBucket("msig", &Multisig{}),
	}
}

// GetMultisig returns the group stored under the given address.
func (b MultisigBucket) GetMultisig(db gate.ReadOnlyKVStore, key gate.Address) (*Multisig, error) {
	var m Multisig
	if err := b.One(db, key, &m); err != nil {
		return nil, errors.Wrapf(err, "multisig %s", key)
	}
	return &m, nil
}

// ProposalBucket is a type-safe wrapper around the proposal storage.
type ProposalBucket struct {
	orm.ModelBucket
}

// NewProposalBucket initializes a ProposalBucket with the default
// prefix.
func NewProposalBucket() ProposalBucket {
	return ProposalBucket{
		ModelBucket: orm.NewModelBucket("prop", &Proposal{}),
	}
}

// GetProposal returns the proposal stored under the given address.
func (b ProposalBucket) GetProposal(db gate.ReadOnlyKVStore, key gate.Address) (*Proposal, error) {
	var p Proposal
	if err := b.One(db, key, &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %s", key)
	}
	return &p, nil
}
