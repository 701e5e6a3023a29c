package multisig

import (
	"context"
	"testing"

	"github.com/gatework/gate"
	"github.com/gatework/gate/app"
	"github.com/gatework/gate/errors"
	"github.com/gatework/gate/gatetest"
	"github.com/gatework/gate/gatetest/assert"
	"github.com/gatework/gate/store"
	"github.com/gatework/gate/x/utils"
)

// recordingInvoker remembers every forwarded call. If fail is set it
// refuses the invocation, and if reenter is set it runs the given
// function inside Invoke, before returning.
type recordingInvoker struct {
	calls       []CallDescriptor
	authorities []gate.Condition
	fail        error
	reenter     func(ctx gate.Context, db gate.KVStore) error
}

var _ Invoker = (*recordingInvoker)(nil)

func (i *recordingInvoker) Invoke(ctx gate.Context, db gate.KVStore, call CallDescriptor, authority gate.Condition) error {
	if i.fail != nil {
		return i.fail
	}
	if i.reenter != nil {
		if err := i.reenter(ctx, db); err != nil {
			return err
		}
	}
	i.calls = append(i.calls, call)
	i.authorities = append(i.authorities, authority)
	return nil
}

type testEnv struct {
	auth    *gatetest.CtxAuth
	invoker *recordingInvoker
	handler gate.Handler
	db      gate.CacheableKVStore

	alice gate.Condition
	bob   gate.Condition
	carol gate.Condition
	eve   gate.Condition
}

func newTestEnv() *testEnv {
	auth := &gatetest.CtxAuth{Key: "auth"}
	invoker := &recordingInvoker{}

	router := app.NewRouter()
	RegisterRoutes(router, auth, invoker)
	handler := app.ChainDecorators(
		utils.NewRecover(),
		utils.NewLogging(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
	).Chain(router)

	return &testEnv{
		auth:    auth,
		invoker: invoker,
		handler: handler,
		db:      store.MemStore(),
		alice:   gatetest.NewCondition(),
		bob:     gatetest.NewCondition(),
		carol:   gatetest.NewCondition(),
		eve:     gatetest.NewCondition(),
	}
}

func (e *testEnv) signedBy(signers ...gate.Condition) gate.Context {
	return e.auth.SetConditions(context.Background(), signers...)
}

func (e *testEnv) deliver(ctx gate.Context, msg gate.Msg) (*gate.DeliverResult, error) {
	return e.handler.Deliver(ctx, e.db, &gatetest.Tx{Msg: msg})
}

func (e *testEnv) check(ctx gate.Context, msg gate.Msg) (*gate.CheckResult, error) {
	return e.handler.Check(ctx, e.db, &gatetest.Tx{Msg: msg})
}

func (e *testEnv) members() []gate.Address {
	return []gate.Address{
		e.alice.Address(),
		e.bob.Address(),
		e.carol.Address(),
	}
}

// createGroup delivers a CreateMsg signed by alice and returns the
// group address.
func (e *testEnv) createGroup(t testing.TB, threshold uint32) gate.Address {
	t.Helper()
	res, err := e.deliver(e.signedBy(e.alice), &CreateMsg{
		Members:         e.members(),
		Threshold:       threshold,
		DerivationNonce: 1,
	})
	assert.Nil(t, err)
	return gate.Address(res.Data)
}

// propose delivers a ProposeMsg signed by the given member and returns
// the proposal address.
func (e *testEnv) propose(t testing.TB, group gate.Address, proposer gate.Condition, call CallDescriptor) gate.Address {
	t.Helper()
	res, err := e.deliver(e.signedBy(proposer), &ProposeMsg{
		Multisig: group,
		Call:     call,
	})
	assert.Nil(t, err)
	return gate.Address(res.Data)
}

func testCall(e *testEnv) CallDescriptor {
	return CallDescriptor{
		Target: e.eve.Address(),
		Accounts: []AccountMeta{
			{Address: e.alice.Address(), Signer: false, Writable: true},
			{Address: e.eve.Address(), Signer: false, Writable: false},
		},
		Payload: []byte("transfer 100"),
	}
}

// accountsFor builds the execution account contexts mirroring the
// stored descriptors.
func accountsFor(call CallDescriptor) []AccountContext {
	accounts := make([]AccountContext, len(call.Accounts))
	for i, meta := range call.Accounts {
		accounts[i] = AccountContext{
			Address:  meta.Address,
			Signer:   meta.Signer,
			Writable: meta.Writable,
		}
	}
	return accounts
}

func TestCreateMultisig(t *testing.T) {
	e := newTestEnv()

	res, err := e.check(e.signedBy(e.alice), &CreateMsg{
		Members:         e.members(),
		Threshold:       2,
		DerivationNonce: 1,
	})
	assert.Nil(t, err)
	assert.Equal(t, createCost, res.GasAllocated)

	group := e.createGroup(t, 2)
	assert.Equal(t, MultisigCondition(e.alice.Address(), 1).Address(), group)

	stored, err := NewMultisigBucket().GetMultisig(e.db, group)
	assert.Nil(t, err)
	assert.Equal(t, e.alice.Address(), stored.Creator)
	assert.Equal(t, uint32(2), stored.Threshold)
	assert.Equal(t, uint64(0), stored.ProposalCount)
	assert.Equal(t, 3, len(stored.Members))
	assert.Nil(t, validateAddressSet(stored.Members))
}

func TestCreateMultisigUnauthenticated(t *testing.T) {
	e := newTestEnv()
	_, err := e.deliver(context.Background(), &CreateMsg{
		Members:         e.members(),
		Threshold:       2,
		DerivationNonce: 1,
	})
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestCreateMultisigDuplicate(t *testing.T) {
	e := newTestEnv()
	e.createGroup(t, 2)

	// same creator and nonce derive the same address
	_, err := e.deliver(e.signedBy(e.alice), &CreateMsg{
		Members:         e.members(),
		Threshold:       2,
		DerivationNonce: 1,
	})
	assert.IsErr(t, errors.ErrDuplicate, err)

	// a different nonce gives the creator a fresh address
	_, err = e.deliver(e.signedBy(e.alice), &CreateMsg{
		Members:         e.members(),
		Threshold:       2,
		DerivationNonce: 2,
	})
	assert.Nil(t, err)
}

func TestProposeTransaction(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)

	call := testCall(e)
	proposal := e.propose(t, group, e.bob, call)
	assert.Equal(t, ProposalCondition(group, 0).Address(), proposal)

	stored, err := NewProposalBucket().GetProposal(e.db, proposal)
	assert.Nil(t, err)
	assert.Equal(t, group, stored.Multisig)
	assert.Equal(t, e.bob.Address(), stored.Proposer)
	assert.Equal(t, call, stored.Call)
	assert.Equal(t, 0, len(stored.Approvals))
	assert.Equal(t, ProposalStatusPending, stored.Status)

	ms, err := NewMultisigBucket().GetMultisig(e.db, group)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), ms.ProposalCount)

	// the next proposal lands on the next counter-derived address
	second := e.propose(t, group, e.carol, call)
	assert.Equal(t, ProposalCondition(group, 1).Address(), second)
}

func TestProposeByNonMember(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)

	_, err := e.deliver(e.signedBy(e.eve), &ProposeMsg{
		Multisig: group,
		Call:     testCall(e),
	})
	assert.IsErr(t, ErrNotMember, err)
}

func TestProposeToMissingMultisig(t *testing.T) {
	e := newTestEnv()
	_, err := e.deliver(e.signedBy(e.alice), &ProposeMsg{
		Multisig: gatetest.NewCondition().Address(),
		Call:     testCall(e),
	})
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestApproveTransaction(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	proposal := e.propose(t, group, e.alice, testCall(e))

	_, err := e.deliver(e.signedBy(e.bob), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	stored, err := NewProposalBucket().GetProposal(e.db, proposal)
	assert.Nil(t, err)
	assert.Equal(t, []gate.Address{e.bob.Address()}, stored.Approvals)

	// a second approval by the same member is rejected
	_, err = e.deliver(e.signedBy(e.bob), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.IsErr(t, ErrAlreadyApproved, err)

	// a rejected approval leaves the set untouched
	stored, err = NewProposalBucket().GetProposal(e.db, proposal)
	assert.Nil(t, err)
	assert.Equal(t, []gate.Address{e.bob.Address()}, stored.Approvals)
}

func TestApproveByNonMember(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	proposal := e.propose(t, group, e.alice, testCall(e))

	_, err := e.deliver(e.signedBy(e.eve), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.IsErr(t, ErrNotMember, err)
}

func TestApproveWrongMultisig(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	proposal := e.propose(t, group, e.alice, testCall(e))

	// a second group owned by the same members
	res, err := e.deliver(e.signedBy(e.alice), &CreateMsg{
		Members:         e.members(),
		Threshold:       2,
		DerivationNonce: 7,
	})
	assert.Nil(t, err)
	other := gate.Address(res.Data)

	_, err = e.deliver(e.signedBy(e.bob), &ApproveMsg{Multisig: other, Proposal: proposal})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestExecuteTransaction(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	exec := &ExecuteMsg{Multisig: group, Proposal: proposal, Accounts: accountsFor(call)}

	// no approvals yet
	_, err := e.deliver(e.signedBy(e.eve), exec)
	assert.IsErr(t, ErrNotExecutable, err)

	_, err = e.deliver(e.signedBy(e.alice), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	// one of two approvals
	_, err = e.deliver(e.signedBy(e.eve), exec)
	assert.IsErr(t, ErrNotExecutable, err)

	_, err = e.deliver(e.signedBy(e.bob), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	// quorum reached; anyone may trigger, even a non-member
	_, err = e.deliver(e.signedBy(e.eve), exec)
	assert.Nil(t, err)

	assert.Equal(t, 1, len(e.invoker.calls))
	assert.Equal(t, call, e.invoker.calls[0])
	assert.Equal(t, MultisigCondition(e.alice.Address(), 1), e.invoker.authorities[0])

	// the record is retired
	_, err = NewProposalBucket().GetProposal(e.db, proposal)
	assert.IsErr(t, errors.ErrNotFound, err)

	// execution does not touch the proposal counter
	ms, err := NewMultisigBucket().GetMultisig(e.db, group)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), ms.ProposalCount)

	// and a retired proposal cannot be executed again
	_, err = e.deliver(e.signedBy(e.eve), exec)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestExecuteBelowUnanimousThreshold(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 3)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	for _, member := range []gate.Condition{e.alice, e.bob} {
		_, err := e.deliver(e.signedBy(member), &ApproveMsg{Multisig: group, Proposal: proposal})
		assert.Nil(t, err)
	}

	// 2 of 3 distinct approvals is not enough
	_, err := e.deliver(e.signedBy(e.carol), &ExecuteMsg{
		Multisig: group,
		Proposal: proposal,
		Accounts: accountsFor(call),
	})
	assert.IsErr(t, ErrNotExecutable, err)
	assert.Equal(t, 0, len(e.invoker.calls))
}

func TestExecuteAccountMismatch(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 1)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	_, err := e.deliver(e.signedBy(e.alice), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	accounts := accountsFor(call)

	cases := map[string]struct {
		accounts []AccountContext
		wantErr  error
	}{
		"exact match": {
			accounts: accounts,
		},
		"flags may differ": {
			// access modes come from the stored descriptor, the
			// supplied flags are not compared
			accounts: []AccountContext{
				{Address: accounts[0].Address, Signer: true, Writable: false},
				{Address: accounts[1].Address, Signer: true, Writable: true},
			},
		},
		"too few": {
			accounts: accounts[:1],
			wantErr:  ErrAccountMismatch,
		},
		"too many": {
			accounts: append(append([]AccountContext{}, accounts...), accounts[0]),
			wantErr:  ErrAccountMismatch,
		},
		"wrong order": {
			accounts: []AccountContext{accounts[1], accounts[0]},
			wantErr:  ErrAccountMismatch,
		},
		"wrong identity": {
			accounts: []AccountContext{
				accounts[0],
				{Address: gatetest.NewCondition().Address()},
			},
			wantErr: ErrAccountMismatch,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			// mismatch checks are read only, so reuse the same
			// pending proposal across cases
			res, err := e.check(e.signedBy(e.eve), &ExecuteMsg{
				Multisig: group,
				Proposal: proposal,
				Accounts: tc.accounts,
			})
			if tc.wantErr == nil {
				assert.Nil(t, err)
				assert.Equal(t, executeCost, res.GasAllocated)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}

			// a failed attempt leaves the proposal pending
			stored, err := NewProposalBucket().GetProposal(e.db, proposal)
			assert.Nil(t, err)
			assert.Equal(t, ProposalStatusPending, stored.Status)
		})
	}
}

func TestExecuteRollsBackOnFailedCall(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	for _, member := range []gate.Condition{e.alice, e.bob} {
		_, err := e.deliver(e.signedBy(member), &ApproveMsg{Multisig: group, Proposal: proposal})
		assert.Nil(t, err)
	}

	e.invoker.fail = errors.Wrap(errors.ErrState, "target rejected the call")
	_, err := e.deliver(e.signedBy(e.eve), &ExecuteMsg{
		Multisig: group,
		Proposal: proposal,
		Accounts: accountsFor(call),
	})
	assert.IsErr(t, errors.ErrState, err)

	// everything rolled back: still pending, approvals intact
	stored, err := NewProposalBucket().GetProposal(e.db, proposal)
	assert.Nil(t, err)
	assert.Equal(t, ProposalStatusPending, stored.Status)
	assert.Equal(t, 2, len(stored.Approvals))

	// the retry succeeds once the target accepts
	e.invoker.fail = nil
	_, err = e.deliver(e.signedBy(e.eve), &ExecuteMsg{
		Multisig: group,
		Proposal: proposal,
		Accounts: accountsFor(call),
	})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(e.invoker.calls))
}

func TestExecuteReentrancy(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 1)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	_, err := e.deliver(e.signedBy(e.alice), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	// the forwarded call observes the proposal already flipped out
	// of pending, so it cannot trigger it a second time
	var reentrantErr error
	e.invoker.reenter = func(ctx gate.Context, db gate.KVStore) error {
		handlers := ExecuteHandler{
			auth:      e.auth,
			multisigs: NewMultisigBucket(),
			proposals: NewProposalBucket(),
			invoker:   e.invoker,
		}
		_, reentrantErr = handlers.Deliver(ctx, db, &gatetest.Tx{Msg: &ExecuteMsg{
			Multisig: group,
			Proposal: proposal,
			Accounts: accountsFor(call),
		}})
		return nil
	}

	_, err = e.deliver(e.signedBy(e.eve), &ExecuteMsg{
		Multisig: group,
		Proposal: proposal,
		Accounts: accountsFor(call),
	})
	assert.Nil(t, err)
	assert.IsErr(t, ErrAlreadyProcessed, reentrantErr)
}

func TestExecuteGrantsGroupAuthority(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 1)
	call := testCall(e)
	proposal := e.propose(t, group, e.alice, call)

	_, err := e.deliver(e.signedBy(e.alice), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	// inside the forwarded call, the group address authenticates
	var seen bool
	e.invoker.reenter = func(ctx gate.Context, db gate.KVStore) error {
		seen = Authenticate{}.HasAddress(ctx, group)
		return nil
	}
	_, err = e.deliver(e.signedBy(e.eve), &ExecuteMsg{
		Multisig: group,
		Proposal: proposal,
		Accounts: accountsFor(call),
	})
	assert.Nil(t, err)
	assert.Equal(t, true, seen)

	// outside of execution the authority is gone
	assert.Equal(t, false, Authenticate{}.HasAddress(e.signedBy(e.eve), group))
}

func TestCancelTransaction(t *testing.T) {
	e := newTestEnv()
	group := e.createGroup(t, 2)
	proposal := e.propose(t, group, e.bob, testCall(e))

	// only the proposer may cancel, membership is not enough
	_, err := e.deliver(e.signedBy(e.alice), &CancelMsg{Multisig: group, Proposal: proposal})
	assert.IsErr(t, ErrNotProposer, err)

	_, err = e.deliver(e.signedBy(e.bob), &CancelMsg{Multisig: group, Proposal: proposal})
	assert.Nil(t, err)

	// the record is retired without any forwarded call
	_, err = NewProposalBucket().GetProposal(e.db, proposal)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, 0, len(e.invoker.calls))

	// retired proposals cannot be approved, executed or cancelled
	_, err = e.deliver(e.signedBy(e.carol), &ApproveMsg{Multisig: group, Proposal: proposal})
	assert.IsErr(t, errors.ErrNotFound, err)

	// the counter does not move on cancellation either
	ms, err := NewMultisigBucket().GetMultisig(e.db, group)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), ms.ProposalCount)
}
