// Package workflow applies the two-stage shelf transition used when files
// move from an intake shelf into the main collection.
//
// The Engine holds one Config at a time. Readers see either the previous or
// the new configuration after Set, never a mix of the two.
package workflow
