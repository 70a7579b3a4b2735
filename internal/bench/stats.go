package bench

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// Stats summarises one benchmark phase.
type Stats struct {
	Label     string
	Ops       int
	Errors    int
	Duration  time.Duration
	Latencies []time.Duration // successful operations only
}

// Throughput returns operations per second over the whole phase.
func (s Stats) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Ops) / s.Duration.Seconds()
}

// Mean returns the average latency of successful operations.
func (s Stats) Mean() time.Duration {
	if len(s.Latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range s.Latencies {
		total += l
	}
	return total / time.Duration(len(s.Latencies))
}

// Percentile returns the p-th percentile (0-100) of successful latencies,
// linearly interpolated between the closest ranks.
func (s Stats) Percentile(p float64) time.Duration {
	if len(s.Latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), s.Latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + time.Duration(math.Round(frac*float64(sorted[lo+1]-sorted[lo])))
}

// Write prints the phase summary.
func (s Stats) Write(w io.Writer) {
	fmt.Fprintf(w, "\n--- %s Results ---\n", s.Label)
	if len(s.Latencies) == 0 {
		fmt.Fprintln(w, "  No successful operations recorded.")
		fmt.Fprintf(w, "Errors: %d\n", s.Errors)
		return
	}
	fmt.Fprintf(w, "Throughput: %.0f ops/sec\n", s.Throughput())
	fmt.Fprintln(w, "Latency Distribution:")
	fmt.Fprintf(w, "  - Avg: %.4f ms\n", ms(s.Mean()))
	fmt.Fprintf(w, "  - p50 (Median): %.4f ms\n", ms(s.Percentile(50)))
	fmt.Fprintf(w, "  - p95: %.4f ms\n", ms(s.Percentile(95)))
	fmt.Fprintf(w, "  - p99: %.4f ms\n", ms(s.Percentile(99)))
	fmt.Fprintf(w, "Errors: %d\n", s.Errors)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
