package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/claimops/internal/domain"
	"github.com/punchamoorthee/claimops/internal/logging"
	"github.com/punchamoorthee/claimops/internal/models"
)

var (
	targetURL   string
	concurrency int
	duration    time.Duration
	summaryPct  float64
)

// Counters
var (
	totalRequests  uint64
	created201     uint64
	summaryOK      uint64
	rejected400    uint64
	failOther      uint64
	submittedCents int64
)

var claimTypes = []string{"auto", "home", "health", "travel"}

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&summaryPct, "summary-ratio", 0.2, "Fraction of requests that read the summary")
}

func main() {
	flag.Parse()
	logger := logging.New("development", "info")
	logger.Info().
		Int("workers", concurrency).
		Dur("duration", duration).
		Float64("summary_ratio", summaryPct).
		Msg("starting benchmark")

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}
	wg.Wait()
	elapsed := time.Since(start)

	summary, err := fetchSummary(&http.Client{Timeout: 5 * time.Second})
	if err != nil {
		logger.Error().Err(err).Msg("final summary fetch failed")
	}
	printResults(elapsed, summary)
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		if rand.Float64() < summaryPct {
			_, err := fetchSummary(client)
			atomic.AddUint64(&totalRequests, 1)
			if err != nil {
				atomic.AddUint64(&failOther, 1)
			} else {
				atomic.AddUint64(&summaryOK, 1)
			}
			continue
		}

		cents := rand.Int64N(100_000) + 1
		payload := models.CreateClaimRequest{
			Type:   claimTypes[rand.IntN(len(claimTypes))],
			Amount: decimal.New(cents, -2),
			Status: "PENDING",
		}
		body, _ := json.Marshal(payload)

		resp, err := client.Post(targetURL+"/api/claims", "application/json", bytes.NewReader(body))
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case http.StatusCreated:
			atomic.AddUint64(&created201, 1)
			atomic.AddInt64(&submittedCents, cents)
		case http.StatusBadRequest:
			atomic.AddUint64(&rejected400, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func fetchSummary(client *http.Client) (*domain.ClaimSummary, error) {
	resp, err := client.Get(targetURL + "/api/claims/summary")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary returned %d", resp.StatusCode)
	}
	var s domain.ClaimSummary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func printResults(d time.Duration, summary *domain.ClaimSummary) {
	total := atomic.LoadUint64(&totalRequests)

	results := map[string]any{
		"duration_sec":     d.Seconds(),
		"total_requests":   total,
		"throughput_rps":   float64(total) / d.Seconds(),
		"claims_created":   atomic.LoadUint64(&created201),
		"summaries_read":   atomic.LoadUint64(&summaryOK),
		"rejected":         atomic.LoadUint64(&rejected400),
		"errors":           atomic.LoadUint64(&failOther),
		"submitted_amount": decimal.New(atomic.LoadInt64(&submittedCents), -2).String(),
	}
	if summary != nil {
		results["summary_total_claims"] = summary.TotalClaims
		results["summary_total_amount"] = summary.TotalAmount.String()
		results["cache_hits"] = summary.CacheHitCount
		results["cache_misses"] = summary.CacheMissCount
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	file, err := os.Create("results_claims.json")
	if err != nil {
		return
	}
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
