package multisig

import (
	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
	"github.com/gatework/gate/x"
)

const (
	createCost  int64 = 300
	proposeCost int64 = 150
	approveCost int64 = 50
	executeCost int64 = 0
	cancelCost  int64 = 0
)

// RegisterRoutes instantiates and registers all handlers in this
// package. The invoker is the host capability that performs the
// forwarded call once a proposal is approved.
func RegisterRoutes(r gate.Registry, auth x.Authenticator, invoker Invoker) {
	multisigs := NewMultisigBucket()
	proposals := NewProposalBucket()

	r.Handle(&CreateMsg{}, CreateHandler{auth: auth, multisigs: multisigs})
	r.Handle(&ProposeMsg{}, ProposeHandler{auth: auth, multisigs: multisigs, proposals: proposals})
	r.Handle(&ApproveMsg{}, ApproveHandler{auth: auth, multisigs: multisigs, proposals: proposals})
	r.Handle(&ExecuteMsg{}, ExecuteHandler{auth: auth, multisigs: multisigs, proposals: proposals, invoker: invoker})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, proposals: proposals})
}

// CreateHandler establishes new groups.
type CreateHandler struct {
	auth      x.Authenticator
	multisigs MultisigBucket
}

var _ gate.Handler = CreateHandler{}

// Check just verifies the transaction is properly formed and returns
// the cost of executing it.
func (h CreateHandler) Check(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gate.CheckResult{GasAllocated: createCost}, nil
}

// Deliver persists a new group with a normalized member set and a zero
// proposal counter.
func (h CreateHandler) Deliver(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	cond := MultisigCondition(creator, msg.DerivationNonce)
	key := cond.Address()
	switch has, err := h.multisigs.Has(db, key); {
	case err != nil:
		return nil, err
	case has:
		return nil, errors.Wrapf(errors.ErrDuplicate, "multisig %s", key)
	}

	group := &Multisig{
		Creator:         creator,
		DerivationNonce: msg.DerivationNonce,
		Members:         normalizeMembers(msg.Members),
		Threshold:       msg.Threshold,
		ProposalCount:   0,
		AddressProof:    cond,
	}
	if err := h.multisigs.Put(db, key, group); err != nil {
		return nil, errors.Wrap(err, "cannot store multisig")
	}
	return &gate.DeliverResult{Data: key}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h CreateHandler) validate(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*CreateMsg, gate.Address, error) {
	var msg CreateMsg
	if err := gate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	creator := x.MainSigner(ctx, h.auth)
	if creator == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return &msg, creator.Address(), nil
}

// ProposeHandler creates proposals on behalf of members.
type ProposeHandler struct {
	auth      x.Authenticator
	multisigs MultisigBucket
	proposals ProposalBucket
}

var _ gate.Handler = ProposeHandler{}

// Check just verifies the transaction is properly formed and returns
// the cost of executing it.
func (h ProposeHandler) Check(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gate.CheckResult{GasAllocated: proposeCost}, nil
}

// Deliver creates a pending proposal at the counter-derived address
// and then increments the group's counter. The address derives from
// the pre-increment value, and the counter moves only after the record
// is written: within this atomic transaction a failed creation cannot
// consume a counter value.
func (h ProposeHandler) Deliver(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, group, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	cond := ProposalCondition(msg.Multisig, group.ProposalCount)
	key := cond.Address()
	switch has, err := h.proposals.Has(db, key); {
	case err != nil:
		return nil, err
	case has:
		// The counter guarantees a fresh address; an occupied one
		// means the store and the counter disagree.
		return nil, errors.Wrapf(errors.ErrHuman, "proposal address %s occupied", key)
	}

	proposal := &Proposal{
		Multisig:     msg.Multisig,
		Proposer:     proposer,
		Call:         msg.Call,
		Approvals:    nil,
		Status:       ProposalStatusPending,
		AddressProof: cond,
	}
	if err := h.proposals.Put(db, key, proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	group.ProposalCount++
	if err := h.multisigs.Put(db, msg.Multisig, group); err != nil {
		return nil, errors.Wrap(err, "cannot bump proposal count")
	}
	return &gate.DeliverResult{Data: key}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h ProposeHandler) validate(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*ProposeMsg, *Multisig, gate.Address, error) {
	var msg ProposeMsg
	if err := gate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	group, err := h.multisigs.GetMultisig(db, msg.Multisig)
	if err != nil {
		return nil, nil, nil, err
	}

	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	proposer := signer.Address()
	if !group.IsMember(proposer) {
		return nil, nil, nil, errors.Wrapf(ErrNotMember, "%s", proposer)
	}
	return &msg, group, proposer, nil
}

// ApproveHandler collects member approvals on pending proposals.
type ApproveHandler struct {
	auth      x.Authenticator
	multisigs MultisigBucket
	proposals ProposalBucket
}

var _ gate.Handler = ApproveHandler{}

// Check just verifies the transaction is properly formed and returns
// the cost of executing it.
func (h ApproveHandler) Check(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gate.CheckResult{GasAllocated: approveCost}, nil
}

// Deliver inserts the approver into the proposal's approval set.
// Approvals are append only; there is no retraction.
func (h ApproveHandler) Deliver(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, proposal, approver, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	proposal.Approvals = insertAddress(proposal.Approvals, approver)
	if err := h.proposals.Put(db, msg.Proposal, proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store approval")
	}
	return &gate.DeliverResult{Data: msg.Proposal}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h ApproveHandler) validate(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*ApproveMsg, *Proposal, gate.Address, error) {
	var msg ApproveMsg
	if err := gate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	proposal, err := loadOwnedProposal(h.proposals, db, msg.Proposal, msg.Multisig)
	if err != nil {
		return nil, nil, nil, err
	}
	group, err := h.multisigs.GetMultisig(db, msg.Multisig)
	if err != nil {
		return nil, nil, nil, err
	}

	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	approver := signer.Address()
	if !group.IsMember(approver) {
		return nil, nil, nil, errors.Wrapf(ErrNotMember, "%s", approver)
	}
	if proposal.HasApproved(approver) {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyApproved, "%s", approver)
	}
	return &msg, proposal, approver, nil
}

// ExecuteHandler forwards approved calls.
//
// The handler relies on the transaction savepoint of its caller: when
// the forwarded call fails, every write made here (the status flip and
// the record deletion) is discarded with it and the proposal stays
// pending, approvals intact, ready for a retry.
type ExecuteHandler struct {
	auth      x.Authenticator
	multisigs MultisigBucket
	proposals ProposalBucket
	invoker   Invoker
}

var _ gate.Handler = ExecuteHandler{}

// Check just verifies the transaction is properly formed and returns
// the cost of executing it.
func (h ExecuteHandler) Check(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gate.CheckResult{GasAllocated: executeCost}, nil
}

// Deliver marks the proposal executed, forwards the stored call signed
// as the group, and retires the record.
func (h ExecuteHandler) Deliver(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, group, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// Flip the status before delegating. If the forwarded call
	// re-enters this proposal it observes a non-pending record and
	// cannot execute it a second time.
	proposal.Status = ProposalStatusExecuted
	if err := h.proposals.Put(db, msg.Proposal, proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	// The invocation is built exclusively from the stored call
	// descriptor. The caller-supplied account contexts only proved
	// identity correspondence, they cannot override the access modes
	// fixed at proposal time.
	ctx = withMultisig(ctx, group.AddressProof)
	if err := h.invoker.Invoke(ctx, db, proposal.Call, group.AddressProof); err != nil {
		return nil, errors.Wrap(err, "forwarded call")
	}

	// Terminal proposals do not persist; the record's storage flows
	// back to the group.
	if err := h.proposals.Delete(db, msg.Proposal); err != nil {
		return nil, errors.Wrap(err, "cannot retire proposal")
	}
	return &gate.DeliverResult{Data: msg.Proposal, Log: "proposal executed"}, nil
}

// validate does all common pre-processing between Check and Deliver.
// The precondition order is part of the contract: lifecycle state
// first, then quorum, then account correspondence.
func (h ExecuteHandler) validate(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*ExecuteMsg, *Multisig, *Proposal, error) {
	var msg ExecuteMsg
	if err := gate.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	proposal, err := loadOwnedProposal(h.proposals, db, msg.Proposal, msg.Multisig)
	if err != nil {
		return nil, nil, nil, err
	}
	group, err := h.multisigs.GetMultisig(db, msg.Multisig)
	if err != nil {
		return nil, nil, nil, err
	}

	if !Executable(group, proposal) {
		return nil, nil, nil, errors.Wrapf(ErrNotExecutable,
			"%d of %d approvals", distinctApprovals(proposal), group.Threshold)
	}

	stored := proposal.Call.Accounts
	if len(msg.Accounts) != len(stored) {
		return nil, nil, nil, errors.Wrapf(ErrAccountMismatch,
			"want %d accounts, got %d", len(stored), len(msg.Accounts))
	}
	for i, meta := range stored {
		// Identity must correspond position for position. Signer
		// and writable flags of the supplied context are not
		// compared: the stored descriptor alone decides the access
		// modes of the forwarded call.
		if !meta.Address.Equals(msg.Accounts[i].Address) {
			return nil, nil, nil, errors.Wrapf(ErrAccountMismatch, "account #%d", i)
		}
	}
	return &msg, group, proposal, nil
}

// CancelHandler retires pending proposals without forwarding.
type CancelHandler struct {
	auth      x.Authenticator
	proposals ProposalBucket
}

var _ gate.Handler = CancelHandler{}

// Check just verifies the transaction is properly formed and returns
// the cost of executing it.
func (h CancelHandler) Check(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gate.CheckResult{GasAllocated: cancelCost}, nil
}

// Deliver deletes the proposal. No external call is made.
func (h CancelHandler) Deliver(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.proposals.Delete(db, msg.Proposal); err != nil {
		return nil, errors.Wrap(err, "cannot retire proposal")
	}
	return &gate.DeliverResult{Data: msg.Proposal, Log: "proposal cancelled"}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h CancelHandler) validate(ctx gate.Context, db gate.KVStore, tx gate.Tx) (*CancelMsg, error) {
	var msg CancelMsg
	if err := gate.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	proposal, err := loadOwnedProposal(h.proposals, db, msg.Proposal, msg.Multisig)
	if err != nil {
		return nil, err
	}

	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	if !proposal.Proposer.Equals(signer.Address()) {
		return nil, errors.Wrapf(ErrNotProposer, "%s", signer.Address())
	}
	return &msg, nil
}

// loadOwnedProposal fetches a proposal, ensures it belongs to the
// presented group and that it is still pending. Every mutating
// operation shares these checks.
func loadOwnedProposal(bucket ProposalBucket, db gate.ReadOnlyKVStore, key, owner gate.Address) (*Proposal, error) {
	proposal, err := bucket.GetProposal(db, key)
	if err != nil {
		return nil, err
	}
	if !proposal.Multisig.Equals(owner) {
		return nil, errors.Wrapf(errors.ErrInput, "proposal %s does not belong to multisig %s", key, owner)
	}
	if proposal.Status != ProposalStatusPending {
		return nil, errors.Wrapf(ErrAlreadyProcessed, "status %s", proposal.Status)
	}
	return proposal, nil
}
