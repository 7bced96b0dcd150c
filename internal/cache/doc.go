// Package cache provides file-based caching of exchange-rate snapshots with
// absolute expiry instants.
//
// The package has two layers:
//   - Store: byte-oriented key/value storage. FileStore keeps one JSON file per
//     key in a directory; MemoryStore keeps values in a map for tests and for
//     invocations that run with the disk cache disabled.
//   - RateCache: wraps a Store with an envelope that pairs a payload with a
//     Unix expiry timestamp. Expired or malformed envelopes are treated as
//     absent and removed from the store when they are read.
//
// Keys are base currency codes. Keys are sanitized for the filesystem, but
// callers always address entries by the original key.
package cache
