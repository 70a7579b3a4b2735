// Package ring implements a consistent hashing ring with virtual nodes.
// The ring is built once from a static membership list and maps keys to
// an ordered preference list of distinct physical nodes.
package ring
