package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	processor "auction-market/internal/auctionProcessor"
	"auction-market/internal/clock"
	"auction-market/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name            string
	NumUsers        int
	NumAuctions     int
	ReadRatio       int
	MaxBidIncrement int
	Burst           bool // if true, no delay between ops
}

// OperationMetrics collects latencies safely
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (min, max, avg, p95, p99 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.latencies) == 0 {
		return
	}
	latencies := append([]time.Duration(nil), om.latencies...)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	min = latencies[0]
	max = latencies[len(latencies)-1]

	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	avg = total / time.Duration(len(latencies))
	p95 = latencies[int(0.95*float64(len(latencies)))]
	p99 = latencies[int(0.99*float64(len(latencies)))]
	return
}

// Benchmark_Load_BiddingSystem runs multiple scenarios
func Benchmark_Load_BiddingSystem(b *testing.B) {
	scenarios := []LoadScenario{
		{"Low-Contention-WriteHeavy", 200, 200, 0, 50, false},
		{"High-Contention-WriteHeavy", 500, 10, 0, 20, false},
		{"Mixed-Workload", 300, 50, 7, 30, false},
		{"ReadHeavy", 200, 50, 9, 20, false},
		{"Edge-Case-SingleAuction", 100, 1, 5, 10, false},
		{"Peak-Burst", 500, 50, 0, 20, true},
	}

	for _, s := range scenarios {
		b.Run(s.Name, func(b *testing.B) {
			runParallelScenario(b, s)
		})
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	env := newBenchEnv(b, s.NumUsers)
	ctx := context.Background()
	auctions := make([]int64, s.NumAuctions)
	for i := range auctions {
		auctions[i] = env.addAuction(b, fmt.Sprintf("auction_%d", i), 100)
	}

	var totalOps, successfulBids, failedBids, totalReads int64
	metrics := &OperationMetrics{}

	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			auctionID := auctions[rnd.Intn(len(auctions))]

			opStart := time.Now()
			if rnd.Intn(10) < s.ReadRatio {
				_, _ = env.svc.GetProductBids(ctx, auctionID)
				atomic.AddInt64(&totalReads, 1)
			} else {
				amount := decimal.NewFromInt(int64(101 + rnd.Intn(s.MaxBidIncrement)))
				userID := env.users[rnd.Intn(len(env.users))]
				if _, err := env.svc.PlaceBid(ctx, userID, auctionID, amount, ""); err != nil {
					atomic.AddInt64(&failedBids, 1)
				} else {
					atomic.AddInt64(&successfulBids, 1)
				}
			}

			metrics.Record(time.Since(opStart))
			atomic.AddInt64(&totalOps, 1)

			if !s.Burst {
				time.Sleep(time.Millisecond)
			}
		}
	})

	elapsed := time.Since(start)
	throughput := float64(totalOps) / elapsed.Seconds()
	min, max, avg, p95, p99 := metrics.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	b.Logf(
		"Scenario: %s | Auctions: %d | Total Ops: %d | Accepted Bids: %d | Rejected Bids: %d | Reads: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		s.Name, s.NumAuctions, totalOps, successfulBids, failedBids, totalReads, elapsed,
		throughput,
		float64(min.Microseconds()), float64(avg.Microseconds()), float64(max.Microseconds()),
		float64(p95.Microseconds()), float64(p99.Microseconds()),
		float64(mem.Alloc)/1024/1024,
	)
}

// TestLoad_SingleWinnerUnderContention hammers a few auctions and then checks the ledger of each one.
func TestLoad_SingleWinnerUnderContention(t *testing.T) {
	env := newBenchEnv(t, 50)
	ctx := context.Background()

	auctions := make([]int64, 5)
	for i := range auctions {
		auctions[i] = env.addAuction(t, fmt.Sprintf("contended_%d", i), 100)
	}

	var wg sync.WaitGroup
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				auctionID := auctions[rnd.Intn(len(auctions))]
				userID := env.users[rnd.Intn(len(env.users))]
				amount := decimal.NewFromInt(int64(101 + rnd.Intn(1000)))
				_, _ = env.svc.PlaceBid(ctx, userID, auctionID, amount, "")
			}
		}(int64(w))
	}
	wg.Wait()

	for _, id := range auctions {
		bids, err := env.repo.GetBidsByAuction(ctx, id)
		require.NoError(t, err)
		require.NotEmpty(t, bids)

		winners := 0
		for _, b := range bids {
			if b.IsWinning {
				winners++
			}
		}
		require.Equal(t, 1, winners, "auction %d", id)
		require.True(t, bids[0].IsWinning, "highest bid must be the winner")

		auction, err := env.repo.GetAuction(ctx, id)
		require.NoError(t, err)
		require.True(t, auction.CurrentHighestBid.Equal(bids[0].Amount))
	}

	// every auction closes with exactly one order, even with overlapping sweeps
	fake := clock.NewFake(time.Now().Add(48 * time.Hour))
	proc := processor.NewAuctionProcessor(ledger.New(env.repo), processor.WithClock(fake), processor.WithWorkers(8))

	var created int64
	var sweeps sync.WaitGroup
	for i := 0; i < 4; i++ {
		sweeps.Add(1)
		go func() {
			defer sweeps.Done()
			summary, err := proc.ProcessEndedAuctions(ctx)
			if err != nil {
				return
			}
			atomic.AddInt64(&created, int64(len(summary.Results)))
		}()
	}
	sweeps.Wait()

	_, err := proc.ProcessEndedAuctions(ctx)
	require.NoError(t, err)

	for _, id := range auctions {
		orders, err := env.repo.GetAuctionOrdersByProduct(ctx, id)
		require.NoError(t, err)
		require.Len(t, orders, 1)
	}
	require.LessOrEqual(t, created, int64(len(auctions)))
}
