package multisig

import (
	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

const (
	pathCreateMsg  = "multisig/create"
	pathProposeMsg = "multisig/propose"
	pathApproveMsg = "multisig/approve"
	pathExecuteMsg = "multisig/execute"
	pathCancelMsg  = "multisig/cancel"
)

var _ gate.Msg = (*CreateMsg)(nil)
var _ gate.Msg = (*ProposeMsg)(nil)
var _ gate.Msg = (*ApproveMsg)(nil)
var _ gate.Msg = (*ExecuteMsg)(nil)
var _ gate.Msg = (*CancelMsg)(nil)

// Path fulfills gate.Msg to allow routing.
func (CreateMsg) Path() string {
	return pathCreateMsg
}

// Validate enforces member and threshold boundaries. The member list
// may arrive in any order and with duplicates; boundaries are checked
// against the normalized set the handler will store.
func (m *CreateMsg) Validate() error {
	for i, member := range m.Members {
		if err := member.Validate(); err != nil {
			return errors.Wrapf(err, "member #%d", i)
		}
	}
	members := normalizeMembers(m.Members)
	if err := validateMemberSet(members); err != nil {
		return err
	}
	if m.Threshold == 0 || int(m.Threshold) > len(members) {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d members", m.Threshold, len(members))
	}
	return nil
}

// Path fulfills gate.Msg to allow routing.
func (ProposeMsg) Path() string {
	return pathProposeMsg
}

// Validate ensures the call descriptor is well formed.
func (m *ProposeMsg) Validate() error {
	if err := m.Multisig.Validate(); err != nil {
		return errors.Wrap(err, "multisig")
	}
	return m.Call.Validate()
}

// Path fulfills gate.Msg to allow routing.
func (ApproveMsg) Path() string {
	return pathApproveMsg
}

// Validate ensures both references are addresses.
func (m *ApproveMsg) Validate() error {
	if err := m.Multisig.Validate(); err != nil {
		return errors.Wrap(err, "multisig")
	}
	if err := m.Proposal.Validate(); err != nil {
		return errors.Wrap(err, "proposal")
	}
	return nil
}

// Path fulfills gate.Msg to allow routing.
func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

// Validate ensures the references and the supplied account contexts
// are well formed. Correspondence with the stored call descriptor is a
// stateful check left to the handler.
func (m *ExecuteMsg) Validate() error {
	if err := m.Multisig.Validate(); err != nil {
		return errors.Wrap(err, "multisig")
	}
	if err := m.Proposal.Validate(); err != nil {
		return errors.Wrap(err, "proposal")
	}
	if len(m.Accounts) > maxCallAccounts {
		return errors.Wrapf(errors.ErrInput, "too many accounts: %d", len(m.Accounts))
	}
	for i, a := range m.Accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}

// Path fulfills gate.Msg to allow routing.
func (CancelMsg) Path() string {
	return pathCancelMsg
}

// Validate ensures both references are addresses.
func (m *CancelMsg) Validate() error {
	if err := m.Multisig.Validate(); err != nil {
		return errors.Wrap(err, "multisig")
	}
	if err := m.Proposal.Validate(); err != nil {
		return errors.Wrap(err, "proposal")
	}
	return nil
}
