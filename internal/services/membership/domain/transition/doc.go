// Package transition validates proposed membership state transitions.
//
// A transition is a prior state (absent when a membership is created), a
// proposed state (absent when a membership is revoked), the command that
// justifies it and the authenticated signer set. Validation is a pure function:
// every check is local, the first violated rule decides the rejection, and
// inputs are never mutated, so a single Validator may be shared freely across
// goroutines.
//
// Evaluation order is part of the contract because it decides which single
// reason is reported when several rules are broken:
//
//  1. timestamps of each present state,
//  2. immutable fields between prior and proposed state,
//  3. declared signers against the authenticated signer set,
//  4. declared signers against the state's participants,
//  5. the command's own state rules,
//  6. the command's signer policy.
package transition
