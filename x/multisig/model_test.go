package multisig

import (
	"bytes"
	"testing"

	"github.com/gatework/gate"
	"github.com/gatework/gate/gatetest"
	"github.com/gatework/gate/gatetest/assert"
)

func TestConditionDerivation(t *testing.T) {
	creator := gatetest.NewCondition().Address()

	a := MultisigCondition(creator, 0)
	b := MultisigCondition(creator, 1)
	c := MultisigCondition(gatetest.NewCondition().Address(), 0)

	assert.Nil(t, a.Validate())
	if a.Address().Equals(b.Address()) {
		t.Fatal("different nonces must derive different addresses")
	}
	if a.Address().Equals(c.Address()) {
		t.Fatal("different creators must derive different addresses")
	}
	// the derivation is a pure function
	assert.Equal(t, a, MultisigCondition(creator, 0))
}

func TestProposalConditionDerivation(t *testing.T) {
	group := gatetest.NewCondition().Address()

	a := ProposalCondition(group, 0)
	b := ProposalCondition(group, 1)

	assert.Nil(t, a.Validate())
	if a.Address().Equals(b.Address()) {
		t.Fatal("different counter values must derive different addresses")
	}
	assert.Equal(t, a, ProposalCondition(group, 0))
}

func TestNormalizeMembers(t *testing.T) {
	a := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	b := gate.Address(bytes.Repeat([]byte{2}, gate.AddressLength))
	c := gate.Address(bytes.Repeat([]byte{3}, gate.AddressLength))

	got := normalizeMembers([]gate.Address{c, a, b, a, c})
	assert.Equal(t, []gate.Address{a, b, c}, got)
	assert.Nil(t, validateAddressSet(got))
}

func TestValidateMemberSet(t *testing.T) {
	a := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	b := gate.Address(bytes.Repeat([]byte{2}, gate.AddressLength))

	cases := map[string]struct {
		members []gate.Address
		wantErr error
	}{
		"valid": {
			members: []gate.Address{a, b},
		},
		"empty": {
			members: nil,
			wantErr: ErrInvalidMembers,
		},
		"duplicate": {
			members: []gate.Address{a, a},
			wantErr: ErrInvalidMembers,
		},
		"unsorted": {
			members: []gate.Address{b, a},
			wantErr: ErrInvalidMembers,
		},
		"invalid address": {
			members: []gate.Address{{0x01, 0x02}},
			wantErr: ErrInvalidMembers,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := validateMemberSet(tc.members)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestInsertAddress(t *testing.T) {
	a := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	b := gate.Address(bytes.Repeat([]byte{2}, gate.AddressLength))
	c := gate.Address(bytes.Repeat([]byte{3}, gate.AddressLength))

	var set []gate.Address
	set = insertAddress(set, b)
	set = insertAddress(set, a)
	set = insertAddress(set, c)
	assert.Equal(t, []gate.Address{a, b, c}, set)

	// inserting a present address is a noop
	set = insertAddress(set, b)
	assert.Equal(t, []gate.Address{a, b, c}, set)

	if !containsAddress(set, b) {
		t.Fatal("b must be in the set")
	}
	missing := gate.Address(bytes.Repeat([]byte{9}, gate.AddressLength))
	if containsAddress(set, missing) {
		t.Fatal("missing address reported present")
	}
}

func TestExecutable(t *testing.T) {
	a := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	b := gate.Address(bytes.Repeat([]byte{2}, gate.AddressLength))
	c := gate.Address(bytes.Repeat([]byte{3}, gate.AddressLength))

	group := &Multisig{
		Members:   []gate.Address{a, b, c},
		Threshold: 2,
	}

	cases := map[string]struct {
		approvals []gate.Address
		want      bool
	}{
		"no approvals":    {approvals: nil, want: false},
		"below threshold": {approvals: []gate.Address{a}, want: false},
		"at threshold":    {approvals: []gate.Address{a, b}, want: true},
		"above threshold": {approvals: []gate.Address{a, b, c}, want: true},
		// should never occur in storage, but the quorum decision
		// must not count the same approver twice
		"duplicated approver": {approvals: []gate.Address{a, a}, want: false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := &Proposal{Approvals: tc.approvals}
			assert.Equal(t, tc.want, Executable(group, p))
		})
	}
}

func TestMultisigValidate(t *testing.T) {
	creator := gatetest.NewCondition().Address()
	a := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	b := gate.Address(bytes.Repeat([]byte{2}, gate.AddressLength))

	valid := func() *Multisig {
		return &Multisig{
			Creator:      creator,
			Members:      []gate.Address{a, b},
			Threshold:    2,
			AddressProof: MultisigCondition(creator, 0),
		}
	}

	assert.Nil(t, valid().Validate())

	m := valid()
	m.Threshold = 0
	assert.IsErr(t, ErrInvalidThreshold, m.Validate())

	m = valid()
	m.Threshold = 3
	assert.IsErr(t, ErrInvalidThreshold, m.Validate())

	m = valid()
	m.Members = nil
	assert.IsErr(t, ErrInvalidMembers, m.Validate())

	m = valid()
	m.AddressProof = nil
	if m.Validate() == nil {
		t.Fatal("missing address proof must not validate")
	}
}

func TestProposalValidate(t *testing.T) {
	member := gate.Address(bytes.Repeat([]byte{1}, gate.AddressLength))
	group := MultisigCondition(gatetest.NewCondition().Address(), 0)

	valid := func() *Proposal {
		return &Proposal{
			Multisig: group.Address(),
			Proposer: member,
			Call: CallDescriptor{
				Target:  gatetest.NewCondition().Address(),
				Payload: []byte("payload"),
			},
			Status:       ProposalStatusPending,
			AddressProof: ProposalCondition(group.Address(), 0),
		}
	}

	assert.Nil(t, valid().Validate())

	p := valid()
	p.Status = 0
	if p.Validate() == nil {
		t.Fatal("zero status must not validate")
	}

	p = valid()
	p.Call.Payload = bytes.Repeat([]byte{1}, maxPayloadSize+1)
	if p.Validate() == nil {
		t.Fatal("oversized payload must not validate")
	}
}
