package gatetest

import (
	"encoding/json"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// Tx is a mock implementing gate.Tx interface.
type Tx struct {
	// Msg is the message that this transaction carries.
	Msg gate.Msg

	// Err if set is returned by any method call.
	Err error
}

var _ gate.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (gate.Msg, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	return tx.Msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Err != nil {
		return nil, tx.Err
	}
	raw, err := tx.Msg.Marshal()
	if err != nil {
		return nil, err
	}
	return json.Marshal(txFrame{Path: tx.Msg.Path(), Raw: raw})
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if tx.Err != nil {
		return tx.Err
	}
	var frame txFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return err
	}
	if tx.Msg == nil {
		return errors.Wrap(errors.ErrState, "no message template to unmarshal into")
	}
	return tx.Msg.Unmarshal(frame.Raw)
}

type txFrame struct {
	Path string `json:"path"`
	Raw  []byte `json:"raw"`
}

// Msg is a mock implementing gate.Msg interface.
type Msg struct {
	// RoutePath is returned by Path method.
	RoutePath string

	// Serialized represents the serialized form of this message.
	Serialized []byte

	// Err if set is returned by Marshal, Unmarshal and Validate.
	Err error
}

var _ gate.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Marshal() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Serialized, nil
}

func (m *Msg) Unmarshal(raw []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Serialized = raw
	return nil
}

func (m *Msg) Validate() error {
	return m.Err
}
