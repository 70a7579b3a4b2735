// Package it runs multi-node clusters in-process for end-to-end tests.
// Nodes serve real gRPC over in-memory bufconn listeners.
package it

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"replcache/internal/cachepb"
	"replcache/internal/client"
	"replcache/internal/config"
	"replcache/internal/node"
)

const bufSize = 1 << 20

// Cluster represents a test cluster of nodes.
type Cluster struct {
	mu        sync.Mutex
	members   []*Member
	listeners map[string]*bufconn.Listener
	serving   sync.WaitGroup
}

// Member is one running node plus a client connected to it.
type Member struct {
	*node.Node
	Client  *client.Client
	stopped bool
}

// Options tunes a test cluster.
type Options struct {
	ReplicationFactor int
	VNodes            int
	ForwardTimeout    time.Duration
}

// NewCluster starts one node per address. Addresses must be IP literals
// with a port, e.g. "127.0.0.1:7001"; they are never bound on the host.
func NewCluster(addrs []string, opts Options) (*Cluster, error) {
	if opts.VNodes == 0 {
		opts.VNodes = 64
	}

	c := &Cluster{listeners: make(map[string]*bufconn.Listener)}
	for _, addr := range addrs {
		c.listeners[addr] = bufconn.Listen(bufSize)
	}

	for _, addr := range addrs {
		cfg := &config.Config{
			Self:              addr,
			Nodes:             addrs,
			ReplicationFactor: opts.ReplicationFactor,
			VNodes:            opts.VNodes,
			ForwardTimeout:    opts.ForwardTimeout,
		}
		n, err := node.NewNode(cfg, c.Dialer())
		if err != nil {
			c.Stop()
			return nil, fmt.Errorf("failed to create node %s: %w", addr, err)
		}

		cl, err := client.Dial(addr, c.Dialer())
		if err != nil {
			c.Stop()
			return nil, fmt.Errorf("failed to dial node %s: %w", addr, err)
		}

		lis := c.listeners[addr]
		c.serving.Add(1)
		go func() {
			defer c.serving.Done()
			n.Serve(lis)
		}()

		c.mu.Lock()
		c.members = append(c.members, &Member{Node: n, Client: cl})
		c.mu.Unlock()
	}

	return c, nil
}

// Dialer routes connections for cluster addresses to their in-memory listeners.
func (c *Cluster) Dialer() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
		lis, ok := c.listeners[addr]
		if !ok {
			return nil, fmt.Errorf("no node listening on %s", addr)
		}
		return lis.DialContext(ctx)
	})
}

// WaitForReady waits until every running node reports SERVING.
func (c *Cluster) WaitForReady(ctx context.Context) error {
	for _, m := range c.Members() {
		if m.stopped {
			continue
		}
		hc := healthpb.NewHealthClient(m.Client.Conn())
		req := &healthpb.HealthCheckRequest{Service: cachepb.ServiceName}
		resp, err := hc.Check(ctx, req, grpc.WaitForReady(true))
		if err != nil {
			return fmt.Errorf("node %s not ready: %w", m.ID(), err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("node %s reports %s", m.ID(), resp.GetStatus())
		}
	}
	return nil
}

// Member returns the member with the given address, or nil.
func (c *Cluster) Member(addr string) *Member {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.members {
		if m.ID() == addr {
			return m
		}
	}
	return nil
}

// Members returns all members in start order.
func (c *Cluster) Members() []*Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Member(nil), c.members...)
}

// KillNode stops a node so that forwards to it fail.
func (c *Cluster) KillNode(addr string) error {
	m := c.Member(addr)
	if m == nil {
		return fmt.Errorf("node %s not found", addr)
	}
	m.Node.Stop()

	c.mu.Lock()
	m.stopped = true
	c.mu.Unlock()
	return nil
}

// Stop stops all nodes in the cluster.
func (c *Cluster) Stop() {
	for _, m := range c.Members() {
		m.Client.Close()
		m.Node.Stop()
	}
	c.serving.Wait()

	c.mu.Lock()
	c.members = nil
	c.mu.Unlock()
}

// Addrs returns n loopback addresses starting at port base.
func Addrs(n, base int) []string {
	addrs := make([]string, n)
	for i := range addrs {
		addrs[i] = fmt.Sprintf("127.0.0.1:%d", base+i)
	}
	return addrs
}
