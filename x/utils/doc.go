// Package utils contains generic Decorator implementations shared by
// all applications: transaction savepoints, panic recovery and
// structured logging.
package utils
