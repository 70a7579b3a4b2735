// Command replcache runs one node of a replicated in-memory cache.
//
//	replcache --listen node1:50051 --nodes node1:50051,node2:50052,node3:50053 --rf 3
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"replcache/internal/config"
	"replcache/internal/node"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	n, err := node.NewNode(cfg)
	if err != nil {
		log.Fatalf("failed to create node: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[%s] Received %s, shutting down", cfg.Self, sig)
		n.Stop()
	}()

	if err := n.Start(); err != nil {
		log.Fatalf("[%s] %v", cfg.Self, err)
	}
}
