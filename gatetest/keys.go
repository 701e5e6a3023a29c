package gatetest

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"

	"github.com/gatework/gate"
)

// NewCondition generates a fresh signature condition backed by a
// random ed25519 key. Each call returns a different condition, and
// therefore a different address.
func NewCondition() gate.Condition {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return gate.NewCondition("sigs", "ed25519", pub)
}

// NewKey generates a fresh ed25519 keypair together with the condition
// of its public key.
func NewKey() (ed25519.PrivateKey, gate.Condition) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return priv, gate.NewCondition("sigs", "ed25519", pub)
}
