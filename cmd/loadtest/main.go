package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewandler/kernel-go/adapters/prometheus"
	"github.com/codewandler/kernel-go/core/addr"
	"github.com/codewandler/kernel-go/core/kernel"
	"github.com/codewandler/kernel-go/core/mailbox"
	"github.com/codewandler/kernel-go/core/queue"
	"github.com/codewandler/kernel-go/core/system"
)

// === Config ===

var (
	logLevel    = slog.LevelInfo
	numActors   = getEnvInt("ACTORS", 8)
	producers   = getEnvInt("PRODUCERS", 4)
	N           = getEnvInt("N", 100_000)
	mailboxSize = getEnvInt("MAILBOX", 0)
	backendType = getEnv("BACKEND", "auto")
	maxTasks    = getEnvInt("MAX_TASKS", 0)
	metricsAddr = getEnv("METRICS_ADDR", "")
	verbose     = getEnvBool("VERBOSE", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// === Actor ===

type tick struct {
	producer int
	seq      int
}

// counter checks per-producer ordering and counts what it handled.
type counter struct {
	last    map[int]int
	handled *atomic.Int64
	errors  *atomic.Int64
}

func (c *counter) PreStart(hc *kernel.Context) {
	c.last = make(map[int]int)
	hc.Log().Debug("counter started")
}

func (c *counter) Receive(_ *kernel.Context, env mailbox.Envelope[tick]) {
	if prev, ok := c.last[env.Msg.producer]; ok && env.Msg.seq <= prev {
		c.errors.Add(1)
	}
	c.last[env.Msg.producer] = env.Msg.seq
	c.handled.Add(1)
}

func main() {
	if verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	backend, ok := queue.ParseBackend(backendType)
	if !ok {
		checkErr(fmt.Errorf("unknown backend: %s", backendType))
	}

	fmt.Printf("  Actors: %d\n", numActors)
	fmt.Printf("Producers: %d x %d msgs\n", producers, N)
	fmt.Printf(" Mailbox: %d (%s)\n", mailboxSize, backend)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// === metrics ===

	reg := promclient.NewRegistry()
	m := prometheus.NewAllMetrics(reg)
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		log.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	// === system ===

	sys := system.New(system.Options{
		Context:            ctx,
		Log:                log,
		MaxConcurrentTasks: maxTasks,
		KernelMetrics:      m.Kernel,
		ExecutorMetrics:    m.Executor,
	})
	defer sys.Close()

	var handled, orderErrors atomic.Int64
	actors := make([]*kernel.Handle[tick], 0, numActors)
	for i := 0; i < numActors; i++ {
		h, err := system.ActorOf(sys, func() kernel.Actor[tick] {
			return &counter{handled: &handled, errors: &orderErrors}
		}, kernel.Options{
			ID:          fmt.Sprintf("counter-%d", i),
			MailboxSize: mailboxSize,
			Backend:     backend,
		})
		checkErr(err)
		actors = append(actors, h)
	}

	// === START ===

	log.Info("==================================")
	log.Info("Starting ...")

	startAt := time.Now()
	var (
		wg       sync.WaitGroup
		rejected atomic.Int64
	)
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			from := addr.NewURI(fmt.Sprintf("producer-%d", p), addr.NewPath(fmt.Sprintf("/user/producer-%d", p)), sys.ID())
			for i := 0; i < N; i++ {
				h := actors[i%len(actors)]
				for {
					err := h.Tell(tick{producer: p, seq: i}, from)
					if err == nil {
						break
					}
					if !errors.Is(err, queue.ErrFull) {
						checkErr(err)
					}
					// caller-side backpressure policy: yield and retry
					rejected.Add(1)
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()
	sentAt := time.Now()

	total := int64(producers * N)
	for handled.Load() < total {
		select {
		case <-ctx.Done():
			checkErr(fmt.Errorf("timeout: handled %d of %d", handled.Load(), total))
		case <-time.After(5 * time.Millisecond):
		}
	}

	// === stats ===

	doneAt := time.Now()
	took := doneAt.Sub(startAt)
	mu := getMemUsage()

	println("==========================================")
	fmt.Printf("  total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("   send runtime: %.3f seconds\n", sentAt.Sub(startAt).Seconds())
	fmt.Printf("        handled: %d\n", handled.Load())
	fmt.Printf("  rejected sends: %d\n", rejected.Load())
	fmt.Printf("   order errors: %d\n", orderErrors.Load())
	fmt.Printf("       msgs / s: %d\n", int(float64(total)/took.Seconds()))
	fmt.Printf("        mem MiB: %d (sys %d), gc %d\n", mu.Alloc/1024/1024, mu.Sys/1024/1024, mu.NumGC)

	for _, h := range actors {
		checkErr(h.Stop(ctx))
	}
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// === Helpers ===

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
