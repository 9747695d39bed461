package gameday

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoadTestOptions — параметры load-test.
type LoadTestOptions struct {
	// URL переопределяет адрес POST /manuscript/sync.
	URL         string
	Requests    int
	Concurrency int
	// Пауза после каждого запроса выбирается из [MinJitter, MaxJitter).
	MinJitter time.Duration
	MaxJitter time.Duration
}

// DefaultLoadTestOptions — 50 последовательных запросов с паузой 50-300ms.
func DefaultLoadTestOptions() LoadTestOptions {
	return LoadTestOptions{
		Requests:    50,
		Concurrency: 1,
		MinJitter:   50 * time.Millisecond,
		MaxJitter:   300 * time.Millisecond,
	}
}

// maxErrorSamples — сколько ошибок попадает в отчёт.
const maxErrorSamples = 5

type syncPayload struct {
	ProjectID string `json:"project_id"`
	Content   string `json:"content"`
}

// LoadTest генерирует поток синхронизаций манускриптов.
func (r *Runner) LoadTest(ctx context.Context, opts LoadTestOptions) Result {
	r.header("Load Test")

	url := opts.URL
	if url == "" {
		url = r.endpoints.syncURL()
	}
	concurrency := max(opts.Concurrency, 1)

	r.printf("Target: %s\nRequests: %d\n", url, opts.Requests)

	start := r.now()
	probes := make([]Probe, opts.Requests)

	var g errgroup.Group
	g.SetLimit(concurrency)

	// Запросы, не отправленные из-за отмены ctx, в статистику не попадают.
	sent := 0
	for i := 0; i < opts.Requests; i++ {
		if ctx.Err() != nil {
			break
		}
		sent++

		g.Go(func() error {
			payload := syncPayload{
				ProjectID: fmt.Sprintf("proj_%d", 100+rand.IntN(900)),
				Content:   fmt.Sprintf("Game day load test iteration %d", i+1),
			}

			p := r.client.PostJSON(ctx, url, payload)
			probes[i] = p

			if p.Success {
				r.printf("[%d/%d] OK - %s (%.0fms)\n", i+1, opts.Requests, payload.ProjectID, p.LatencyMS)
			} else {
				r.printf("[%d/%d] FAIL - %s\n", i+1, opts.Requests, p.Error)
			}

			// Ошибку отмены не возвращаем, цикл выше её увидит.
			_ = sleep(ctx, jitter(opts.MinJitter, opts.MaxJitter))
			return nil
		})
	}
	_ = g.Wait()
	probes = probes[:sent]

	stats := summarize(probes)
	status := statusOf(stats.success, sent)
	if sent < opts.Requests {
		// Прерванный прогон не может считаться пройденным
		if status == StatusPassed {
			status = StatusPartial
		}
		r.printf("  Cancelled after %d/%d requests\n", sent, opts.Requests)
	}

	r.footer(status, "")
	r.printf("  Success: %d/%d\n  Errors: %d\n  Avg Latency: %.0fms\n  P95 Latency: %.0fms\n",
		stats.success, sent, sent-stats.success, stats.avg, stats.p95)

	return r.result(ScenarioLoadTest, status, start, map[string]any{
		"total_requests": opts.Requests,
		"sent":           sent,
		"concurrency":    concurrency,
		"success":        stats.success,
		"errors":         sent - stats.success,
		"avg_latency_ms": round2(stats.avg),
		"p95_latency_ms": round2(stats.p95),
		"error_samples":  stats.errorSamples,
	})
}

type latencyStats struct {
	success      int
	avg          float64
	p95          float64
	errorSamples []string
}

func summarize(probes []Probe) latencyStats {
	stats := latencyStats{errorSamples: []string{}}
	if len(probes) == 0 {
		return stats
	}

	latencies := make([]float64, len(probes))
	var sum float64
	for i, p := range probes {
		latencies[i] = p.LatencyMS
		sum += p.LatencyMS
		if p.Success {
			stats.success++
		} else if len(stats.errorSamples) < maxErrorSamples {
			stats.errorSamples = append(stats.errorSamples, p.Error)
		}
	}

	sort.Float64s(latencies)
	stats.avg = sum / float64(len(latencies))
	stats.p95 = percentile(latencies, 0.95)
	return stats
}

// percentile по отсортированной выборке без интерполяции.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func jitter(minD, maxD time.Duration) time.Duration {
	if maxD <= minD {
		return minD
	}
	return minD + rand.N(maxD-minD)
}
