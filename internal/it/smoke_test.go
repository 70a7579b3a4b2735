package it

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replcache/internal/replication"
)

func startCluster(t *testing.T, size int, opts Options) *Cluster {
	t.Helper()
	cluster, err := NewCluster(Addrs(size, 7001), opts)
	require.NoError(t, err)
	t.Cleanup(cluster.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, cluster.WaitForReady(ctx))
	return cluster
}

func TestSmoke_SetReplicatesToEveryNode(t *testing.T) {
	cluster := startCluster(t, 3, Options{ReplicationFactor: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, b := cluster.Members()[0], cluster.Members()[1]
	require.NoError(t, a.Client.Set(ctx, "user:42", []byte("hello")))

	for _, m := range cluster.Members() {
		value, found := m.Store().Get("user:42")
		assert.True(t, found, "node %s should store user:42", m.ID())
		assert.Equal(t, []byte("hello"), value)
	}

	value, found, err := b.Client.Get(ctx, "user:42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("hello"), value)
}

func TestSmoke_ReplicationFactorOne_GetIsLocal(t *testing.T) {
	cluster := startCluster(t, 3, Options{ReplicationFactor: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := cluster.Members()[0]
	require.NoError(t, a.Client.Set(ctx, "user:7", []byte("x")))

	owner, _ := a.Ring().Owner([]byte("user:7"))
	for _, m := range cluster.Members() {
		_, found, err := m.Client.Get(ctx, "user:7")
		require.NoError(t, err)
		assert.Equal(t, m.ID() == owner, found, "Get at %s (owner %s)", m.ID(), owner)
	}
}

func TestSmoke_OwnersHoldEveryKey(t *testing.T) {
	cluster := startCluster(t, 5, Options{ReplicationFactor: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members := cluster.Members()
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		coordinator := members[i%len(members)]
		require.NoError(t, coordinator.Client.Set(ctx, key, []byte(key)))
	}

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		owners := members[0].Ring().Resolve([]byte(key), 3)
		require.Len(t, owners, 3)

		ownerSet := make(map[string]bool)
		for _, o := range owners {
			ownerSet[o] = true
		}
		for _, m := range members {
			value, found := m.Store().Get(key)
			if ownerSet[m.ID()] {
				assert.True(t, found, "owner %s missing %s", m.ID(), key)
				assert.Equal(t, []byte(key), value)
			} else {
				assert.False(t, found, "non-owner %s holds %s", m.ID(), key)
			}
		}
	}
}

func TestSmoke_UnreachableOwnerFailsSet(t *testing.T) {
	cluster := startCluster(t, 3, Options{ReplicationFactor: 3, ForwardTimeout: 2 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	members := cluster.Members()
	require.NoError(t, cluster.KillNode(members[2].ID()))

	err := members[0].Client.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, replication.ErrReplicationIncomplete)

	var incomplete *replication.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{members[2].ID()}, incomplete.FailedOwners())

	// The reachable owners applied the write anyway.
	for _, m := range members[:2] {
		_, found := m.Store().Get("k")
		assert.True(t, found, "node %s should hold k", m.ID())
	}
}

func TestSmoke_ConcurrentClients(t *testing.T) {
	cluster := startCluster(t, 3, Options{ReplicationFactor: 2})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members := cluster.Members()
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			m := members[w%len(members)]
			for i := 0; i < 20; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				assert.NoError(t, m.Client.Set(ctx, key, []byte(key)))
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, m := range members {
		total += m.Store().Len()
	}
	assert.Equal(t, 10*20*2, total, "every key should be stored on exactly two nodes")
}
