// Package app assembles the pieces of the framework into a runnable
// message processor: a path-based router and a decorator chain that
// wraps it.
package app

import (
	"fmt"
	"regexp"

	"github.com/gatework/gate"
	"github.com/gatework/gate/errors"
)

// isPath is the RegExp to ensure the routes make sense.
var isPath = regexp.MustCompile(`^[a-z0-9_/]{4,40}$`).MatchString

// Router allows us to register many handlers with different paths and
// then direct each message to the proper handler.
type Router struct {
	routes map[string]gate.Handler
}

var _ gate.Registry = (*Router)(nil)
var _ gate.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]gate.Handler),
	}
}

// Handle adds a new route. Panics on duplicate routes or invalid
// paths, as this is a configuration error.
func (r *Router) Handle(m gate.Msg, h gate.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %q", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path, or a
// noSuchPathHandler if none is registered.
func (r *Router) handler(m gate.Msg) gate.Handler {
	if h, ok := r.routes[m.Path()]; ok {
		return h
	}
	return noSuchPathHandler{path: m.Path()}
}

// Check dispatches to the proper handler based on the message path.
func (r *Router) Check(ctx gate.Context, store gate.KVStore, tx gate.Tx) (*gate.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get message")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on the message path.
func (r *Router) Deliver(ctx gate.Context, store gate.KVStore, tx gate.Tx) (*gate.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get message")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ gate.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(gate.Context, gate.KVStore, gate.Tx) (*gate.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", h.path)
}

func (h noSuchPathHandler) Deliver(gate.Context, gate.KVStore, gate.Tx) (*gate.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", h.path)
}
