package ring

import (
	"fmt"
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

// TestRing_Property_OrderInvariant tests that independently built rings agree
// regardless of the order the membership list was given in.
func TestRing_Property_OrderInvariant(t *testing.T) {
	nodes1 := []string{"n1:1", "n2:1", "n3:1", "n4:1", "n5:1"}
	nodes2 := []string{"n4:1", "n2:1", "n5:1", "n1:1", "n3:1"}

	ring1 := mustRing(t, nodes1, 128)
	ring2 := mustRing(t, nodes2, 128)

	for i := 0; i < 500; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		for rf := 1; rf <= 5; rf++ {
			owners1 := ring1.Resolve(key, rf)
			owners2 := ring2.Resolve(key, rf)
			if !slices.Equal(owners1, owners2) {
				t.Fatalf("Owner mismatch for key %s rf=%d: %v vs %v", key, rf, owners1, owners2)
			}
		}
	}
}

// TestRing_Property_NoDuplicatesBoundedSize tests uniqueness and
// len(Resolve(k, R)) == min(R, clusterSize) for random keys.
func TestRing_Property_NoDuplicatesBoundedSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for clusterSize := 1; clusterSize <= 7; clusterSize++ {
		nodes := make([]string, clusterSize)
		for i := range nodes {
			nodes[i] = fmt.Sprintf("10.0.0.%d:7000", i+1)
		}
		ring := mustRing(t, nodes, 32)

		for i := 0; i < 200; i++ {
			key := make([]byte, 1+rng.Intn(32))
			rng.Read(key)
			rf := 1 + rng.Intn(9)

			owners := ring.Resolve(key, rf)
			if len(owners) != min(rf, clusterSize) {
				t.Fatalf("size=%d rf=%d: expected %d owners, got %d", clusterSize, rf, min(rf, clusterSize), len(owners))
			}

			seen := make(map[string]bool)
			for _, o := range owners {
				if seen[o] {
					t.Fatalf("Duplicate owner %s in %v", o, owners)
				}
				if !ring.Contains(o) {
					t.Fatalf("Owner %s is not a member", o)
				}
				seen[o] = true
			}
		}
	}
}

// TestRing_Property_PrefixStable tests that the owner list for a smaller
// replication factor is a prefix of the list for a larger one.
func TestRing_Property_PrefixStable(t *testing.T) {
	ring := mustRing(t, []string{"a:1", "b:1", "c:1", "d:1"}, 64)

	for i := 0; i < 300; i++ {
		key := []byte(fmt.Sprintf("k%d", i))
		full := ring.Resolve(key, 4)
		for rf := 1; rf < 4; rf++ {
			if !slices.Equal(ring.Resolve(key, rf), full[:rf]) {
				t.Fatalf("Resolve(%s, %d) is not a prefix of %v", key, rf, full)
			}
		}
	}
}

// TestRing_Property_EveryPointHasMember tests that every virtual point maps
// to a physical node and points are in ring order.
func TestRing_Property_EveryPointHasMember(t *testing.T) {
	ring := mustRing(t, []string{"a:1", "b:1", "c:1"}, 128)

	for i, v := range ring.vnodes {
		if !ring.Contains(v.nodeID) {
			t.Fatalf("Point %d maps to unknown node %s", i, v.nodeID)
		}
		if i > 0 && ring.vnodes[i-1].hash > v.hash {
			t.Fatalf("Points out of order at %d", i)
		}
	}
}
