// Package bench drives SET and GET load against a running cluster and
// reports throughput and latency percentiles.
package bench

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Client is the part of client.Client the load generator needs.
type Client interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Close() error
}

// DialFunc opens a client to one node.
type DialFunc func(addr string) (Client, error)

// Config describes a benchmark run.
type Config struct {
	Nodes       []string
	TotalOps    int
	Concurrency int
	KeySize     int
	ValueSize   int
	Seed        int64
}

// DefaultConfig mirrors the reference benchmark: 20000 ops, 50 clients,
// 16-byte keys, 128-byte values against a local three node cluster.
func DefaultConfig() Config {
	return Config{
		Nodes:       []string{"localhost:50051", "localhost:50052", "localhost:50053"},
		TotalOps:    20000,
		Concurrency: 50,
		KeySize:     16,
		ValueSize:   128,
		Seed:        time.Now().UnixNano(),
	}
}

type opKind int

const (
	opSet opKind = iota
	opGet
)

type op struct {
	kind  opKind
	key   string
	value []byte
}

// Runner executes benchmark phases.
type Runner struct {
	cfg  Config
	dial DialFunc
	rng  *rand.Rand
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg Config, dial DialFunc) (*Runner, error) {
	if len(cfg.Nodes) == 0 {
		return nil, errors.New("bench: no nodes configured")
	}
	if cfg.TotalOps <= 0 || cfg.Concurrency <= 0 || cfg.KeySize <= 0 || cfg.ValueSize < 0 {
		return nil, errors.New("bench: ops, concurrency and key size must be positive")
	}
	return &Runner{
		cfg:  cfg,
		dial: dial,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run performs a SET phase over TotalOps random keys and then a GET phase
// over the same keys.
func (r *Runner) Run(ctx context.Context) (set, get Stats) {
	keys := make([]string, r.cfg.TotalOps)
	setOps := make([]op, r.cfg.TotalOps)
	for i := range keys {
		keys[i] = r.randomKey()
		setOps[i] = op{kind: opSet, key: keys[i], value: r.randomValue()}
	}
	set = r.phase(ctx, "SET Benchmark", setOps)

	getOps := make([]op, len(keys))
	for i, k := range keys {
		getOps[i] = op{kind: opGet, key: k}
	}
	get = r.phase(ctx, "GET Benchmark (Hot Cache)", getOps)
	return set, get
}

// phase runs ops through Concurrency workers. Each worker talks to one
// node picked uniformly at random.
func (r *Runner) phase(ctx context.Context, label string, ops []op) Stats {
	queue := make(chan op, len(ops))
	for _, o := range ops {
		queue <- o
	}
	close(queue)

	targets := make([]string, r.cfg.Concurrency)
	for i := range targets {
		targets[i] = r.cfg.Nodes[r.rng.Intn(len(r.cfg.Nodes))]
	}

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, len(ops))
		errCount  int
		wg        sync.WaitGroup
	)

	start := time.Now()
	for _, addr := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lat, errs := r.worker(ctx, addr, queue)

			mu.Lock()
			latencies = append(latencies, lat...)
			errCount += errs
			mu.Unlock()
		}()
	}
	wg.Wait()

	return Stats{
		Label:     label,
		Ops:       len(ops),
		Errors:    errCount,
		Duration:  time.Since(start),
		Latencies: latencies,
	}
}

func (r *Runner) worker(ctx context.Context, addr string, queue <-chan op) ([]time.Duration, int) {
	var (
		latencies []time.Duration
		errs      int
	)

	c, err := r.dial(addr)
	if err != nil {
		log.Printf("bench: dial %s: %v", addr, err)
		for range queue {
			errs++
		}
		return nil, errs
	}
	defer c.Close()

	for o := range queue {
		start := time.Now()
		switch o.kind {
		case opSet:
			err = c.Set(ctx, o.key, o.value)
		case opGet:
			_, _, err = c.Get(ctx, o.key)
		}
		if err != nil {
			errs++
			continue
		}
		latencies = append(latencies, time.Since(start))
	}
	return latencies, errs
}

// randomKey returns a hex key of KeySize characters.
func (r *Runner) randomKey() string {
	b := make([]byte, (r.cfg.KeySize+1)/2)
	r.rng.Read(b)
	return hex.EncodeToString(b)[:r.cfg.KeySize]
}

func (r *Runner) randomValue() []byte {
	b := make([]byte, r.cfg.ValueSize)
	r.rng.Read(b)
	return b
}
