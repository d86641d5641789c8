// Package traverse provides hand-rolled higher-order functions over slices.
//
// The functions reproduce the semantics of the standard array iteration
// methods: callbacks see (element, index, sequence), inputs are never
// mutated or retained, and Reduce without an initial value fails on an
// empty sequence with ErrEmptyReduce.
//
// Every function has an *Err twin whose callback may return an error. The
// first error aborts iteration and is returned unmodified, with no partial
// result.
package traverse
