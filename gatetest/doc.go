/*
Package gatetest provides mocks and helpers for testing gate
extensions: an in-context authenticator, transaction and message
stubs, and fresh key conditions. The assert subpackage holds minimal
test assertions that understand gate error codes.
*/
package gatetest
