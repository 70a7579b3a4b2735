// Package replication holds the pieces of write replication that do not
// depend on a transport: owner selection, request origin tagging and the
// all-owners fan-out.
package replication

import (
	"replcache/internal/ring"
)

// DefaultReplicationFactor is used when a non-positive factor is configured.
const DefaultReplicationFactor = 3

// OwnersForKey returns the replicationFactor owners responsible for a key
// using the ring's preference order.
func OwnersForKey(r *ring.Ring, key []byte, replicationFactor int) []string {
	if replicationFactor <= 0 {
		replicationFactor = DefaultReplicationFactor
	}
	return r.Resolve(key, replicationFactor)
}
