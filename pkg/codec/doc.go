// Package codec converts a distribution of identical units over ordered buckets
// to and from a short base-62 share token.
//
// # Model
//
// A composition of N identical units into K ordered buckets is equivalent,
// via stars and bars, to choosing K-1 separator positions among N+K-1 slots.
// Bar k sits at slot
//
//	bar[k] = counts[0] + ... + counts[k] + k
//
// so the bar positions are strictly increasing. The combinatorial number
// system then ranks the bar tuple as
//
//	index = C(bar[0], 1) + C(bar[1], 2) + ... + C(bar[K-2], K-1)
//
// which is a bijection onto [0, C(N+K-1, K-1)). No integer in that range is
// wasted and none outside it is ever produced.
//
// # Tokens
//
// The index is rendered MSD-first over the alphabet 0-9A-Za-z. Zero is "0".
// Decoding accepts leading zeros but rejects any character outside the
// alphabet and any value at or beyond the combinatorial range.
//
// # Default
//
// [Default] is the 100-unit, 25-bucket codec used by share links:
//
//	token, err := codec.Encode(counts) // counts has 25 entries summing to 100
//	counts, err := codec.Decode(token)
//
// Smaller codecs built with [New] behave identically and are useful for
// exhaustive checks.
//
// # Concurrency
//
// A Codec is immutable after construction and safe for concurrent use.
package codec
