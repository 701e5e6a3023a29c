package multisig

import (
	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ gate.Initializer = (*Initializer)(nil)

// FromGenesis initializes the groups declared in the genesis file.
func (*Initializer) FromGenesis(opts gate.Options, db gate.KVStore) error {
	var groups []struct {
		Creator         gate.Address   `json:"creator"`
		DerivationNonce uint8          `json:"derivation_nonce"`
		Members         []gate.Address `json:"members"`
		Threshold       uint32         `json:"threshold"`
	}
	if err := opts.ReadOptions("multisig", &groups); err != nil {
		return errors.Wrap(err, "cannot load multisig genesis")
	}

	bucket := NewMultisigBucket()
	for i, g := range groups {
		cond := MultisigCondition(g.Creator, g.DerivationNonce)
		group := &Multisig{
			Creator:         g.Creator,
			DerivationNonce: g.DerivationNonce,
			Members:         normalizeMembers(g.Members),
			Threshold:       g.Threshold,
			ProposalCount:   0,
			AddressProof:    cond,
		}
		if err := bucket.Put(db, cond.Address(), group); err != nil {
			return errors.Wrapf(err, "cannot store multisig #%d", i)
		}
	}
	return nil
}
