package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goHawcx "github.com/MrEthical07/goHawcx"
	"github.com/MrEthical07/goHawcx/config"
	"github.com/MrEthical07/goHawcx/logger"
	"github.com/MrEthical07/goHawcx/metrics/export/prometheus"
	"github.com/MrEthical07/goHawcx/sim"
	"github.com/MrEthical07/goHawcx/transport/redisrelay"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const otpCode = "246810"

// device is one simulated phone: an engine, its hub and the client on top.
type device struct {
	client *goHawcx.Client
	engine *sim.Engine
	stop   func()
}

func main() {
	var (
		flows       = flag.Int("flows", 10000, "number of authenticate+otp flows")
		concurrency = flag.Int("concurrency", 64, "number of simulated devices")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, HAWCX_REDIS_ADDR or miniredis is used")
		direct      = flag.Bool("direct", false, "emit events in-process instead of relaying them through redis")
		logLevel    = flag.String("log-level", "", "log level; overrides HAWCX_LOG_LEVEL")
		configPath  = flag.String("config", "", "optional config file")
	)
	flag.Parse()

	if *flows <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "flows and concurrency must be > 0")
		os.Exit(2)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}
	if settings.ProjectAPIKey == "" {
		settings.ProjectAPIKey = "pk_loadtest"
	}
	if settings.BaseURL == "" && settings.AuthBaseURL == "" {
		settings.BaseURL = "https://loadtest.invalid"
	}
	log := logger.New(settings.LogLevel)
	defer func() { _ = log.Sync() }()

	var rdb redis.UniversalClient
	if !*direct {
		addr := *redisAddr
		if addr == "" {
			addr = settings.RedisAddr
		}
		var cleanup func()
		rdb, cleanup, err = openRedis(addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start redis: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var auditSink goHawcx.AuditSink
	if settings.AuditEnabled {
		auditSink = goHawcx.NewJSONWriterSink(os.Stderr)
	}

	devices := make([]*device, *concurrency)
	for i := range devices {
		d, err := newDevice(ctx, i, settings, rdb, auditSink, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "device %d: %v\n", i, err)
			os.Exit(1)
		}
		defer d.stop()
		devices[i] = d
	}

	stats := runFlows(ctx, devices, *flows)

	fmt.Println("---- results ----")
	printStats("authenticate", stats)
	fmt.Println("---- metrics ----")
	fmt.Print(prometheus.NewPrometheusExporterFromSource(fleet(devices)).Render())
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func newDevice(ctx context.Context, i int, settings *config.Settings, rdb redis.UniversalClient, auditSink goHawcx.AuditSink, log *zap.Logger) (*device, error) {
	log = log.With(zap.Int("device", i))
	hub := goHawcx.NewHub(log, nil)

	var (
		sink  sim.Sink = hub
		stops []func()
	)
	if rdb != nil {
		prefix := redisrelay.WithPrefix(fmt.Sprintf("%sdev-%d:", settings.ChannelPrefix, i))
		relay, err := redisrelay.NewRelay(rdb, hub, prefix, redisrelay.WithLogger(log))
		if err != nil {
			return nil, err
		}
		pub, err := redisrelay.NewPublisher(rdb, prefix, redisrelay.WithLogger(log))
		if err != nil {
			return nil, err
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := relay.Run(runCtx); err != nil {
				log.Error("relay stopped", zap.Error(err))
			}
		}()
		select {
		case <-relay.Ready():
		case <-time.After(5 * time.Second):
			cancel()
			return nil, fmt.Errorf("relay subscription timed out")
		}
		stops = append(stops, func() {
			cancel()
			<-done
		})
		sink = pub
	}

	engine := sim.NewEngine(sink, sim.Options{ValidOTP: otpCode, Logger: log})
	b := goHawcx.New().
		WithConfig(settings.ClientConfig()).
		WithHub(hub).
		WithBridge(engine).
		WithLogger(log)
	if auditSink != nil {
		b = b.WithAuditSink(auditSink)
	}
	client, err := b.Build()
	if err != nil {
		engine.Close()
		return nil, err
	}
	if err := client.Initialize(ctx, settings.InitializeConfig()); err != nil {
		engine.Close()
		return nil, err
	}

	return &device{
		client: client,
		engine: engine,
		stop: func() {
			client.Close()
			engine.Close()
			for _, stop := range stops {
				stop()
			}
		},
	}, nil
}

func runFlows(ctx context.Context, devices []*device, flows int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, flows)
		mu        sync.Mutex
	)

	start := time.Now()
	for _, d := range devices {
		wg.Add(1)
		go func(d *device) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= flows {
					return
				}
				t0 := time.Now()
				err := authenticateOnce(ctx, d.client, fmt.Sprintf("user-%d", i))
				dur := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, dur)
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func authenticateOnce(ctx context.Context, client *goHawcx.Client, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	otp := make(chan struct{}, 1)
	inv, err := client.Authenticate(ctx, userID, &goHawcx.AuthOptions{
		OnOTPRequired: func() {
			select {
			case otp <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}

	select {
	case <-otp:
	case <-inv.Done():
		_, err := inv.Wait(ctx)
		return err
	case <-ctx.Done():
		inv.Cancel()
		return ctx.Err()
	}
	if err := client.SubmitOTP(ctx, otpCode); err != nil {
		inv.Cancel()
		return err
	}
	if _, err := inv.Wait(ctx); err != nil {
		inv.Cancel()
		return err
	}
	return nil
}

// fleet sums the metrics of every device.
type fleet []*device

func (f fleet) MetricsSnapshot() goHawcx.MetricsSnapshot {
	out := goHawcx.MetricsSnapshot{
		Counters:   map[goHawcx.MetricID]uint64{},
		Histograms: map[goHawcx.MetricID][]uint64{},
	}
	for _, d := range f {
		snap := d.client.MetricsSnapshot()
		for id, v := range snap.Counters {
			out.Counters[id] += v
		}
		for id, buckets := range snap.Histograms {
			sum := out.Histograms[id]
			if sum == nil {
				sum = make([]uint64, len(buckets))
			}
			for j := range buckets {
				if j < len(sum) {
					sum[j] += buckets[j]
				}
			}
			out.Histograms[id] = sum
		}
	}
	return out
}

func (f fleet) AuditDropped() uint64 {
	var n uint64
	for _, d := range f {
		n += d.client.AuditDropped()
	}
	return n
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: flows=%d failures=%d total=%s flows/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
