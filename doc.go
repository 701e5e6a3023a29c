/*
Package gate defines the common interfaces that tie the repository
together: addresses and conditions, messages and transactions, handlers
and decorators, and the key-value storage contracts.

State transitions are expressed as messages. A message travels inside a
transaction, is routed by its path to a handler, and the handler mutates
state through a KVStore. Authorization is expressed through conditions:
a condition is the preimage of an address, and whoever presents a
fulfilled condition may act as its address. Derived addresses for stored
entities are built the same way, which is what lets a stored entity act
as the signer of a call forwarded on its behalf.

We pass context.Context between app, middleware and handlers. For every
value XYZ of type T carried in the context there are two functions:

	WithXYZ(Context, T) Context
	GetXYZ(Context) T
*/
package gate
