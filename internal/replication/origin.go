package replication

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// ForwardedMetadataKey marks a Set sent by a coordinator to another owner.
// Its presence, not its value, is what receivers check.
const ForwardedMetadataKey = "is-replication"

// Origin tells a node whether a Set must be coordinated or only stored.
type Origin int

const (
	// ClientOriginated writes are coordinated: resolved on the ring and
	// fanned out to every owner.
	ClientOriginated Origin = iota
	// Forwarded writes come from a coordinator and are stored locally only.
	Forwarded
)

// String returns the string representation of Origin.
func (o Origin) String() string {
	switch o {
	case ClientOriginated:
		return "client"
	case Forwarded:
		return "forwarded"
	default:
		return "unknown"
	}
}

// WithForwarded returns a context whose outgoing calls carry the forwarded marker.
func WithForwarded(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ForwardedMetadataKey, "true")
}

// OriginFromIncoming classifies a server-side request context.
func OriginFromIncoming(ctx context.Context) Origin {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok && len(md.Get(ForwardedMetadataKey)) > 0 {
		return Forwarded
	}
	return ClientOriginated
}
