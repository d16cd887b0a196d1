package metrics

import (
	"runtime"
	"time"
)

// runtimeGauges are sampled from the Go runtime at scrape time.
type runtimeGauges struct {
	start      time.Time
	uptime     *Gauge
	goroutines *Gauge
	heapAlloc  *Gauge
	heapObjs   *Gauge
	gcCycles   *Gauge
	gcPause    *Gauge
}

// RegisterRuntime adds process and Go runtime gauges to r. They are refreshed
// on every scrape instead of by a background ticker.
func RegisterRuntime(r *Registry, uptime *Gauge) {
	rg := &runtimeGauges{
		start:      time.Now(),
		uptime:     uptime,
		goroutines: r.NewGauge("go_goroutines", "Number of goroutines that currently exist"),
		heapAlloc:  r.NewGauge("go_memstats_heap_alloc_bytes", "Number of heap bytes allocated and still in use"),
		heapObjs:   r.NewGauge("go_memstats_heap_objects", "Number of allocated heap objects"),
		gcCycles:   r.NewGauge("go_gc_cycles_total", "Total number of completed GC cycles"),
		gcPause:    r.NewGauge("go_gc_duration_seconds", "Total GC pause duration in seconds"),
	}

	info := r.NewGauge("go_info", "Information about the Go environment", "version")
	if vec, err := info.WithLabels(runtime.Version()); err == nil {
		vec.Set(1)
	}

	r.OnScrape(rg.sample)
}

func (rg *runtimeGauges) sample() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	if rg.uptime != nil {
		_ = rg.uptime.Set(time.Since(rg.start).Seconds())
	}
	_ = rg.goroutines.Set(float64(runtime.NumGoroutine()))
	_ = rg.heapAlloc.Set(float64(mem.HeapAlloc))
	_ = rg.heapObjs.Set(float64(mem.HeapObjects))
	_ = rg.gcCycles.Set(float64(mem.NumGC))
	_ = rg.gcPause.Set(float64(mem.PauseTotalNs) / 1e9)
}
