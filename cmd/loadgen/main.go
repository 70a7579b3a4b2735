// Command loadgen measures SET and GET latency against a running cluster.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"replcache/internal/bench"
	"replcache/internal/client"
	"replcache/internal/config"
)

func main() {
	def := bench.DefaultConfig()

	nodes := flag.String("nodes", strings.Join(def.Nodes, ","), "comma-separated node addresses")
	ops := flag.Int("ops", def.TotalOps, "operations per phase")
	concurrency := flag.Int("concurrency", def.Concurrency, "concurrent clients")
	keySize := flag.Int("key-size", def.KeySize, "key length in characters")
	valueSize := flag.Int("value-size", def.ValueSize, "value size in bytes")
	seed := flag.Int64("seed", def.Seed, "random seed for keys, values and node choice")
	delay := flag.Duration("delay", 3*time.Second, "wait before starting")
	flag.Parse()

	nodeList, err := config.ParseNodes(*nodes)
	if err != nil {
		log.Fatalf("invalid --nodes: %v", err)
	}

	cfg := bench.Config{
		Nodes:       nodeList,
		TotalOps:    *ops,
		Concurrency: *concurrency,
		KeySize:     *keySize,
		ValueSize:   *valueSize,
		Seed:        *seed,
	}
	runner, err := bench.NewRunner(cfg, func(addr string) (bench.Client, error) {
		c, err := client.Dial(addr)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Starting benchmark in %s against %s\n", *delay, strings.Join(nodeList, ", "))
	time.Sleep(*delay)

	header := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n  Concurrent Key-Value Store Benchmark\n%s\n", header, header)
	fmt.Printf("Configuration: %d concurrent clients, %d total operations\n", cfg.Concurrency, cfg.TotalOps)

	set, get := runner.Run(context.Background())
	set.Write(os.Stdout)
	get.Write(os.Stdout)
}
