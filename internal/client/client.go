// Package client is a Go client for the cache.CacheService of a single node.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"replcache/internal/cachepb"
	"replcache/internal/replication"
)

// Client talks to one cache node. Reads are served from that node's store
// only, so pick the node deliberately when reading back a key.
type Client struct {
	addr string
	conn *grpc.ClientConn
	rpc  cachepb.CacheServiceClient
}

// Dial creates a client for the node at addr. The connection is
// established lazily on the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{
		addr: addr,
		conn: conn,
		rpc:  cachepb.NewCacheServiceClient(conn),
	}, nil
}

// Set writes value under key through the node, which replicates it to
// every owner. If some owner could not be written the error matches
// replication.ErrReplicationIncomplete.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	resp, err := c.rpc.Set(ctx, &cachepb.SetRequest{Key: key, Value: value})
	if err != nil {
		return replication.FromStatus(err)
	}
	if !resp.GetSuccess() {
		return fmt.Errorf("set %q: node %s reported failure", key, c.addr)
	}
	return nil
}

// Get reads key from the node's local store.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := c.rpc.Get(ctx, &cachepb.GetRequest{Key: key})
	if err != nil {
		return nil, false, err
	}
	return resp.GetValue(), resp.GetFound(), nil
}

// Addr returns the node address this client talks to.
func (c *Client) Addr() string {
	return c.addr
}

// Conn returns the underlying connection, e.g. for health checks.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
