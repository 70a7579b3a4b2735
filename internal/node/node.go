// Package node wires a cache node together: the ring, the local store,
// the peer link pool, the coordinator and the gRPC server exposing it.
package node

import (
	"fmt"
	"log"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"replcache/internal/cachepb"
	"replcache/internal/config"
	"replcache/internal/peer"
	"replcache/internal/ring"
	"replcache/internal/storage"
)

// Node represents a single node in the cluster.
type Node struct {
	nodeID     string
	bindAddr   string
	grpcServer *grpc.Server
	health     *health.Server
	store      storage.Store
	ring       *ring.Ring
	links      *peer.Pool
	coord      *Coordinator
	stopOnce   sync.Once
}

// NewNode validates cfg and builds a node. dialOpts are applied to every
// peer link.
func NewNode(cfg *config.Config, dialOpts ...grpc.DialOption) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng, err := ring.New(cfg.Nodes, cfg.VNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to build ring: %w", err)
	}

	store := storage.NewInMemoryStore()
	links := peer.NewPool(dialOpts...)

	n := &Node{
		nodeID:     cfg.Self,
		bindAddr:   cfg.BindAddr(),
		grpcServer: grpc.NewServer(grpc.ForceServerCodec(cachepb.Codec{})),
		health:     health.NewServer(),
		store:      store,
		ring:       rng,
		links:      links,
		coord:      NewCoordinator(cfg.Self, rng, cfg.ReplicationFactor, store, links, cfg.ForwardTimeout),
	}

	cachepb.RegisterCacheServiceServer(n.grpcServer, NewServer(n.coord, n.nodeID, cfg.Verbose))
	healthpb.RegisterHealthServer(n.grpcServer, n.health)
	n.health.SetServingStatus(cachepb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Enable gRPC reflection for grpcurl
	reflection.Register(n.grpcServer)

	return n, nil
}

// Start listens on the configured bind address and serves until Stop.
func (n *Node) Start() error {
	lis, err := net.Listen("tcp", n.bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.bindAddr, err)
	}
	return n.Serve(lis)
}

// Serve serves the node's gRPC services on lis until Stop.
func (n *Node) Serve(lis net.Listener) error {
	log.Printf("[%s] Starting node on %s (ring: %d nodes x %d vnodes)",
		n.nodeID, lis.Addr(), len(n.ring.Nodes()), n.ring.VNodes())

	if err := n.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the node and closes its peer links.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		n.health.Shutdown()
		log.Printf("[%s] Stopping node", n.nodeID)
		n.grpcServer.GracefulStop()
		if err := n.links.Close(); err != nil {
			log.Printf("[%s] Closing peer links: %v", n.nodeID, err)
		}
	})
}

// ID returns the node identifier.
func (n *Node) ID() string {
	return n.nodeID
}

// Store returns the node's local store.
func (n *Node) Store() storage.Store {
	return n.store
}

// Coordinator returns the node's request coordinator.
func (n *Node) Coordinator() *Coordinator {
	return n.coord
}

// Ring returns the node's hash ring.
func (n *Node) Ring() *ring.Ring {
	return n.ring
}
