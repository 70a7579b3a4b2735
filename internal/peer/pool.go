// Package peer keeps one outbound gRPC link per cluster member.
package peer

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"replcache/internal/cachepb"
)

// link is a cached connection to one peer.
type link struct {
	conn   *grpc.ClientConn
	client cachepb.CacheServiceClient
}

// Pool lazily creates and caches gRPC clients to peer nodes, keyed by
// node identifier. Links live until Close; a broken link is not
// re-dialed, its next call simply fails.
type Pool struct {
	mu       sync.RWMutex
	links    map[string]*link
	dialing  singleflight.Group
	dialOpts []grpc.DialOption
	closed   bool
}

// NewPool creates an empty pool. Links use plaintext transport; opts are
// appended to every dial, which lets tests swap in an in-memory dialer.
func NewPool(opts ...grpc.DialOption) *Pool {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	return &Pool{
		links:    make(map[string]*link),
		dialOpts: dialOpts,
	}
}

// Get returns the client for addr, creating the link on first use.
// Concurrent first calls for the same addr share a single dial.
func (p *Pool) Get(addr string) (cachepb.CacheServiceClient, error) {
	p.mu.RLock()
	l, exists := p.links[addr]
	closed := p.closed
	p.mu.RUnlock()

	if exists {
		return l.client, nil
	}
	if closed {
		return nil, errPoolClosed
	}

	v, err, _ := p.dialing.Do(addr, func() (interface{}, error) {
		// Double-check: another flight may have finished while we waited.
		p.mu.RLock()
		l, exists := p.links[addr]
		p.mu.RUnlock()
		if exists {
			return l, nil
		}

		conn, err := grpc.NewClient(addr, p.dialOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
		}
		l = &link{conn: conn, client: cachepb.NewCacheServiceClient(conn)}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			conn.Close()
			return nil, errPoolClosed
		}
		p.links[addr] = l
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*link).client, nil
}

// Len returns the number of established links.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.links)
}

// Close closes every link. Get fails after Close.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for addr, l := range p.links {
		if err := l.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", addr, err))
		}
	}
	p.links = make(map[string]*link)
	p.closed = true
	return errors.Join(errs...)
}

var errPoolClosed = errors.New("peer pool is closed")
