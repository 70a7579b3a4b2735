// Package config builds and validates a node's startup configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"replcache/internal/replication"
	"replcache/internal/ring"
)

// ErrUnknownSelf is returned when a node's own identifier is not in the membership list.
var ErrUnknownSelf = errors.New("config: own address is not in the node list")

// Config holds the node configuration.
type Config struct {
	// Self is this node's identifier and the address peers dial.
	Self string
	// Bind is the address the gRPC server listens on. Defaults to Self.
	Bind string
	// Nodes is the full static membership, Self included.
	Nodes             []string
	ReplicationFactor int
	VNodes            int
	// ForwardTimeout bounds each forwarded Set. Zero adds no deadline.
	ForwardTimeout time.Duration
	Verbose        bool
}

// ParseNodes parses a comma-separated list of node addresses:
// "host1:port1,host2:port2,host3:port3"
func ParseNodes(nodesStr string) ([]string, error) {
	if strings.TrimSpace(nodesStr) == "" {
		return []string{}, nil
	}

	parts := strings.Split(nodesStr, ",")
	nodes := make([]string, 0, len(parts))

	for _, part := range parts {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		if strings.ContainsAny(addr, " \t=") {
			return nil, fmt.Errorf("invalid node address: %q", addr)
		}
		nodes = append(nodes, addr)
	}

	return nodes, nil
}

// Validate checks the configuration. A node must refuse to start if it fails.
func (c *Config) Validate() error {
	if c.Self == "" {
		return errors.New("config: listen address is required")
	}
	if len(c.Nodes) == 0 {
		return ring.ErrEmptyMembership
	}

	seen := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if seen[n] {
			return fmt.Errorf("%w: %s", ring.ErrDuplicateNode, n)
		}
		seen[n] = true
	}
	if !seen[c.Self] {
		return fmt.Errorf("%w: %s", ErrUnknownSelf, c.Self)
	}

	if c.ReplicationFactor < 1 {
		return fmt.Errorf("config: replication factor must be >= 1, got %d", c.ReplicationFactor)
	}
	if c.VNodes < 1 {
		return fmt.Errorf("config: vnodes must be >= 1, got %d", c.VNodes)
	}
	if c.ForwardTimeout < 0 {
		return fmt.Errorf("config: forward timeout must not be negative, got %s", c.ForwardTimeout)
	}
	return nil
}

// BindAddr returns the address the node should listen on.
func (c *Config) BindAddr() string {
	if c.Bind != "" {
		return c.Bind
	}
	return c.Self
}

// Load parses args with fs into a validated Config. Unset flags fall back
// to the REPLCACHE_LISTEN, REPLCACHE_NODES and REPLCACHE_RF variables read
// through getenv.
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	var (
		listen  = fs.String("listen", "", "this node's address, as it appears in --nodes")
		bind    = fs.String("bind", "", "address to listen on if it differs from --listen (e.g. 0.0.0.0:50051)")
		nodes   = fs.String("nodes", "", "comma-separated addresses of every cluster node")
		rf      = fs.Int("rf", replication.DefaultReplicationFactor, "replication factor")
		vnodes  = fs.Int("vnodes", ring.DefaultVNodes, "virtual points per node on the hash ring")
		timeout = fs.Duration("forward-timeout", 0, "deadline for each forwarded write (0 = none)")
		verbose = fs.Bool("verbose", false, "log every request")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["listen"] {
		if v := getenv("REPLCACHE_LISTEN"); v != "" {
			*listen = v
		}
	}
	if !set["nodes"] {
		if v := getenv("REPLCACHE_NODES"); v != "" {
			*nodes = v
		}
	}
	if !set["rf"] {
		if v := getenv("REPLCACHE_RF"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("config: invalid REPLCACHE_RF %q: %w", v, err)
			}
			*rf = n
		}
	}

	nodeList, err := ParseNodes(*nodes)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Self:              strings.TrimSpace(*listen),
		Bind:              strings.TrimSpace(*bind),
		Nodes:             nodeList,
		ReplicationFactor: *rf,
		VNodes:            *vnodes,
		ForwardTimeout:    *timeout,
		Verbose:           *verbose,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
