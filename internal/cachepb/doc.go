// Package cachepb holds the cache.CacheService wire contract described by
// api/cache.proto: the request and response messages, their proto3
// encoding, the gRPC codec and the client and server bindings.
//
// The messages are encoded with protowire so the service stays
// wire-compatible with any proto3 client of api/cache.proto.
package cachepb
