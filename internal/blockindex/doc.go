// Package blockindex implements a generic offset-range index: a map
// from a contiguous span of uint64 keys to a single value, with O(1)
// point lookup and next-key/next-gap queries. internal/ancestrymap is
// its one caller in this repository, using it to answer "which
// ancestor produced this descendant track ID" in O(1) for descendants
// recorded in bulk contiguous spans, rather than scanning every
// individually recorded descendant set.
package blockindex
