package node

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"replcache/internal/cachepb"
	"replcache/internal/replication"
	"replcache/internal/ring"
	"replcache/internal/storage"
)

// Linker hands out outbound clients to peer nodes. *peer.Pool implements it.
type Linker interface {
	Get(addr string) (cachepb.CacheServiceClient, error)
}

// Coordinator handles Set and Get for one node. A client-originated Set
// is resolved on the ring and written to every owner; a forwarded Set is
// stored locally and never forwarded again.
type Coordinator struct {
	self           string
	ring           *ring.Ring
	rf             int
	store          storage.Store
	links          Linker
	forwardTimeout time.Duration
}

// NewCoordinator creates a coordinator for the node identified by self.
func NewCoordinator(self string, r *ring.Ring, rf int, store storage.Store, links Linker, forwardTimeout time.Duration) *Coordinator {
	return &Coordinator{
		self:           self,
		ring:           r,
		rf:             rf,
		store:          store,
		links:          links,
		forwardTimeout: forwardTimeout,
	}
}

// Set stores value under key according to origin. A coordinated Set fails
// with an error matching replication.ErrReplicationIncomplete unless every
// owner acknowledged it.
func (c *Coordinator) Set(ctx context.Context, origin replication.Origin, key string, value []byte) error {
	switch origin {
	case replication.Forwarded:
		c.store.Put(key, value)
		return nil
	case replication.ClientOriginated:
		return c.coordinate(ctx, key, value)
	default:
		return fmt.Errorf("unknown request origin %d", origin)
	}
}

// Get looks the key up in this node's store only. It does not consult the
// ring, so a node outside the key's owners reports not found.
func (c *Coordinator) Get(key string) ([]byte, bool) {
	return c.store.Get(key)
}

// Owners returns the owners of key in preference order.
func (c *Coordinator) Owners(key string) []string {
	return replication.OwnersForKey(c.ring, []byte(key), c.rf)
}

func (c *Coordinator) coordinate(ctx context.Context, key string, value []byte) error {
	owners := c.Owners(key)

	remote := make([]string, 0, len(owners))
	for _, owner := range owners {
		if owner == c.self {
			c.store.Put(key, value)
			continue
		}
		remote = append(remote, owner)
	}
	if len(remote) == 0 {
		return nil
	}

	result := replication.Fanout(ctx, remote, c.forwardTimeout, c.forward(key, value))
	if result.Success() {
		return nil
	}

	err := &replication.IncompleteError{
		Key:      key,
		Owners:   owners,
		Failures: result.Failures,
	}
	log.Printf("[%s] Set failed: %v", c.self, err)
	return err
}

// forward returns the write sent to a single remote owner.
func (c *Coordinator) forward(key string, value []byte) replication.WriteFunc {
	return func(ctx context.Context, owner string) error {
		client, err := c.links.Get(owner)
		if err != nil {
			return fmt.Errorf("failed to get peer link: %w", err)
		}

		resp, err := client.Set(replication.WithForwarded(ctx), &cachepb.SetRequest{
			Key:   key,
			Value: value,
		})
		if err != nil {
			return err
		}
		if !resp.GetSuccess() {
			return errRejected
		}
		return nil
	}
}

var errRejected = errors.New("peer did not acknowledge write")
