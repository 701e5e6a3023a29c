package multisig

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/gatework/gate"
)

// Persisted models and messages are encoded as deterministic (core
// deterministic profile) CBOR. Deterministic encoding matters here:
// the serialized bytes are storage content and must not depend on
// encoder state.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// AccountMeta is one access descriptor of a call: the account the
// forwarded call touches, and the access mode it requires. Captured at
// proposal time and never mutated.
type AccountMeta struct {
	Address  gate.Address `cbor:"1,keyasint"`
	Signer   bool         `cbor:"2,keyasint"`
	Writable bool         `cbor:"3,keyasint"`
}

// CallDescriptor is the full specification of an external call: the
// target, the ordered access descriptors and an opaque payload.
type CallDescriptor struct {
	Target   gate.Address  `cbor:"1,keyasint"`
	Accounts []AccountMeta `cbor:"2,keyasint"`
	Payload  []byte        `cbor:"3,keyasint"`
}

// Multisig is a group of members with a quorum threshold. It is
// created once and immutable afterwards, except for the proposal
// counter.
type Multisig struct {
	Creator gate.Address `cbor:"1,keyasint"`

	// DerivationNonce is chosen by the creator and folded into this
	// record's derived address, so one creator can own many groups.
	DerivationNonce uint8 `cbor:"2,keyasint"`

	// Members is strictly increasing and duplicate free.
	Members []gate.Address `cbor:"3,keyasint"`

	// Threshold is the number of distinct member approvals required
	// before a proposal may be executed.
	Threshold uint32 `cbor:"4,keyasint"`

	// ProposalCount is incremented exactly once per created
	// proposal and never decremented. Every proposal address is
	// derived from the value this counter had when the proposal was
	// created, so no two proposals of this group can ever alias.
	ProposalCount uint64 `cbor:"5,keyasint"`

	// AddressProof is the condition this record's address was
	// derived from. It is the material needed to later authorize a
	// forwarded call as this group.
	AddressProof gate.Condition `cbor:"6,keyasint"`
}

func (m *Multisig) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *Multisig) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus uint8

const (
	// ProposalStatusPending accepts approvals and may be executed
	// or cancelled.
	ProposalStatusPending ProposalStatus = iota + 1
	// ProposalStatusExecuted is terminal.
	ProposalStatusExecuted
	// ProposalStatusCancelled is terminal.
	ProposalStatusCancelled
)

// Proposal is one submitted call waiting for the group's decision.
// Terminal proposals are deleted in the same transaction that retires
// them, so only pending ones persist between transactions.
type Proposal struct {
	// Multisig is the address of the owning group. Every later
	// operation must present the same group.
	Multisig gate.Address `cbor:"1,keyasint"`

	// Proposer is the member that created this proposal and the
	// only identity allowed to cancel it.
	Proposer gate.Address `cbor:"2,keyasint"`

	// Call is captured verbatim at proposal time.
	Call CallDescriptor `cbor:"3,keyasint"`

	// Approvals is the strictly increasing, duplicate free set of
	// members that approved.
	Approvals []gate.Address `cbor:"4,keyasint"`

	Status ProposalStatus `cbor:"5,keyasint"`

	// AddressProof is the condition this record's address was
	// derived from.
	AddressProof gate.Condition `cbor:"6,keyasint"`
}

func (p *Proposal) Marshal() ([]byte, error) {
	return encMode.Marshal(p)
}

func (p *Proposal) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, p)
}

// AccountContext is the execution-time counterpart of an AccountMeta:
// the account the caller supplies to back one access descriptor of the
// forwarded call.
type AccountContext struct {
	Address  gate.Address `cbor:"1,keyasint"`
	Signer   bool         `cbor:"2,keyasint"`
	Writable bool         `cbor:"3,keyasint"`
}

// CreateMsg establishes a new group with its member set and threshold.
type CreateMsg struct {
	Members         []gate.Address `cbor:"1,keyasint"`
	Threshold       uint32         `cbor:"2,keyasint"`
	DerivationNonce uint8          `cbor:"3,keyasint"`
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}

// ProposeMsg submits a call for the group's approval.
type ProposeMsg struct {
	Multisig gate.Address   `cbor:"1,keyasint"`
	Call     CallDescriptor `cbor:"2,keyasint"`
}

func (m *ProposeMsg) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *ProposeMsg) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}

// ApproveMsg records the main signer's approval on a pending proposal.
type ApproveMsg struct {
	Multisig gate.Address `cbor:"1,keyasint"`
	Proposal gate.Address `cbor:"2,keyasint"`
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}

// ExecuteMsg triggers the forwarding of an approved call. Accounts
// must correspond 1:1, by position and identity, to the stored access
// descriptors of the proposal's call.
type ExecuteMsg struct {
	Multisig gate.Address     `cbor:"1,keyasint"`
	Proposal gate.Address     `cbor:"2,keyasint"`
	Accounts []AccountContext `cbor:"3,keyasint"`
}

func (m *ExecuteMsg) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *ExecuteMsg) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}

// CancelMsg retires a pending proposal without forwarding anything.
type CancelMsg struct {
	Multisig gate.Address `cbor:"1,keyasint"`
	Proposal gate.Address `cbor:"2,keyasint"`
}

func (m *CancelMsg) Marshal() ([]byte, error) {
	return encMode.Marshal(m)
}

func (m *CancelMsg) Unmarshal(raw []byte) error {
	return decMode.Unmarshal(raw, m)
}
