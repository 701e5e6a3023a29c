/*
Package errors implements custom error interfaces for the framework.

The idea is to reuse as many errors from this package as possible and
define custom package errors only when necessary. Every extension error
must be created through Register(code, description) so that the error
class survives wrapping and can be returned to a client as a bare code.

There is also support for stacktraces. Ensure you create the error
using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation so a stacktrace is attached. If you wrap multiple times, only
the first wrap records the stacktrace.

Once you have an error, use Is to test its class:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
