package ring

import (
	"cmp"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultVNodes is the number of virtual points each physical node
// contributes when the caller does not pick one.
const DefaultVNodes = 128

var (
	// ErrEmptyMembership is returned when a ring is built with no nodes.
	ErrEmptyMembership = errors.New("ring: membership is empty")
	// ErrDuplicateNode is returned when the same node identifier is listed twice.
	ErrDuplicateNode = errors.New("ring: duplicate node identifier")
)

// vnode represents a virtual node on the ring.
type vnode struct {
	hash   uint32
	nodeID string
}

// Ring implements consistent hashing with virtual nodes.
// It is immutable after New and safe for concurrent use.
type Ring struct {
	vnodesPerNode int
	vnodes        []vnode
	nodes         []string // sorted physical node identifiers
}

// New builds a ring from the full cluster membership.
// The input order does not matter: points are ordered by (hash, nodeID),
// so every node that is handed the same set builds the same ring.
func New(nodes []string, vnodesPerNode int) (*Ring, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyMembership
	}
	if vnodesPerNode <= 0 {
		vnodesPerNode = DefaultVNodes
	}

	seen := make(map[string]bool, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, id := range nodes {
		if strings.TrimSpace(id) == "" {
			return nil, errors.New("ring: empty node identifier")
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	slices.Sort(ids)

	r := &Ring{
		vnodesPerNode: vnodesPerNode,
		vnodes:        make([]vnode, 0, len(ids)*vnodesPerNode),
		nodes:         ids,
	}
	for _, id := range ids {
		for i := 0; i < vnodesPerNode; i++ {
			r.vnodes = append(r.vnodes, vnode{
				hash:   hashString(fmt.Sprintf("%s-vnode-%d", id, i)),
				nodeID: id,
			})
		}
	}

	// Ties on hash are broken by node ID so colliding points stay deterministic.
	slices.SortFunc(r.vnodes, func(a, b vnode) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}
		return cmp.Compare(a.nodeID, b.nodeID)
	})

	return r, nil
}

// Resolve returns the first n distinct physical nodes found walking the
// ring clockwise from the key's position. The result has
// min(n, len(Nodes())) entries and never contains duplicates.
func (r *Ring) Resolve(key []byte, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n > len(r.nodes) {
		n = len(r.nodes)
	}

	idx := r.search(hashBytes(key))
	seen := make(map[string]bool, n)
	result := make([]string, 0, n)

	for i := 0; i < len(r.vnodes) && len(result) < n; i++ {
		nodeID := r.vnodes[(idx+i)%len(r.vnodes)].nodeID
		if !seen[nodeID] {
			seen[nodeID] = true
			result = append(result, nodeID)
		}
	}

	return result
}

// Owner returns the primary owner of key, the first entry of Resolve(key, 1).
func (r *Ring) Owner(key []byte) (string, bool) {
	if len(r.vnodes) == 0 {
		return "", false
	}
	return r.vnodes[r.search(hashBytes(key))].nodeID, true
}

// Nodes returns the physical node identifiers in sorted order.
func (r *Ring) Nodes() []string {
	return slices.Clone(r.nodes)
}

// VNodes returns the number of virtual points per physical node.
func (r *Ring) VNodes() int {
	return r.vnodesPerNode
}

// Contains reports whether nodeID is a member of the ring.
func (r *Ring) Contains(nodeID string) bool {
	_, found := slices.BinarySearch(r.nodes, nodeID)
	return found
}

// search returns the index of the first point at or after h, wrapping to 0.
func (r *Ring) search(h uint32) int {
	idx, _ := slices.BinarySearchFunc(r.vnodes, h, func(v vnode, target uint32) int {
		return cmp.Compare(v.hash, target)
	})
	if idx >= len(r.vnodes) {
		idx = 0
	}
	return idx
}

// hashBytes computes a 32-bit FNV-1a hash.
func hashBytes(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

func hashString(s string) uint32 {
	return hashBytes([]byte(s))
}
