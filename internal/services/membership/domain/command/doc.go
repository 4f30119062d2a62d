// Package command defines the closed set of membership commands and the
// decision shape returned when a proposed transition is checked.
//
// Commands carry the signer list their author declared. The validator compares
// that declaration with the authenticated signer set and with the command's
// own authorization policy, so the declaration is never trusted on its own.
package command
