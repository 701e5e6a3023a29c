package app

import (
	"encoding/json"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// ParseGenesis parses raw genesis json into the option map the
// initializers consume.
func ParseGenesis(raw []byte) (gate.Options, error) {
	var opts gate.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return opts, nil
}

// InitChain runs all initializers against the given store. The first
// failure aborts.
func InitChain(opts gate.Options, db gate.KVStore, inits ...gate.Initializer) error {
	for _, init := range inits {
		if err := init.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
