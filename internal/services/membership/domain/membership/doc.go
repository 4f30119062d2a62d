// Package membership models a party's standing within a business network.
//
// A membership is issued by a network operator, moves between pending, active
// and suspended, and ends when it is revoked (no successor state). The package
// holds the state shape and the pure comparison predicates that transition
// policies are written against; it never stores or mutates memberships.
package membership
