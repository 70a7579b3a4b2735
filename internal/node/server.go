package node

import (
	"context"
	"log"

	"replcache/internal/cachepb"
	"replcache/internal/replication"
)

// Server implements the cache.CacheService gRPC service on top of a Coordinator.
type Server struct {
	cachepb.UnimplementedCacheServiceServer
	coord   *Coordinator
	nodeID  string
	verbose bool
}

// NewServer creates a new gRPC server instance.
func NewServer(coord *Coordinator, nodeID string, verbose bool) *Server {
	return &Server{
		coord:   coord,
		nodeID:  nodeID,
		verbose: verbose,
	}
}

// Set handles Set requests. The is-replication metadata key decides
// whether the write is coordinated or only stored.
func (s *Server) Set(ctx context.Context, req *cachepb.SetRequest) (*cachepb.SetResponse, error) {
	origin := replication.OriginFromIncoming(ctx)
	if s.verbose {
		log.Printf("[%s] Set request: key=%s, origin=%s, bytes=%d", s.nodeID, req.Key, origin, len(req.Value))
	}

	if err := s.coord.Set(ctx, origin, req.Key, req.Value); err != nil {
		return nil, replication.ToStatus(err)
	}
	return &cachepb.SetResponse{Success: true}, nil
}

// Get handles Get requests against the local store.
func (s *Server) Get(ctx context.Context, req *cachepb.GetRequest) (*cachepb.GetResponse, error) {
	value, found := s.coord.Get(req.Key)
	if s.verbose {
		log.Printf("[%s] Get request: key=%s, found=%v", s.nodeID, req.Key, found)
	}

	if !found {
		return &cachepb.GetResponse{Found: false}, nil
	}
	return &cachepb.GetResponse{Value: value, Found: true}, nil
}
