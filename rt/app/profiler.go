package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps the last duration of named CPU scopes, a few counters and a
// once-per-second frame rate.
type Profiler struct {
	Scopes map[string]time.Duration
	Counts map[string]int
	Order  []string

	FPS float64

	now        func() time.Time
	starts     map[string]time.Time
	frames     int
	frameStart time.Time
}

func NewProfiler() *Profiler {
	return newProfilerWith(time.Now)
}

func newProfilerWith(now func() time.Time) *Profiler {
	return &Profiler{
		Scopes: make(map[string]time.Duration),
		Counts: make(map[string]int),
		now:    now,
		starts: make(map[string]time.Time),
	}
}

func (p *Profiler) BeginScope(name string) {
	if _, seen := p.Scopes[name]; !seen {
		p.Order = append(p.Order, name)
		p.Scopes[name] = 0
	}
	p.starts[name] = p.now()
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
		delete(p.starts, name)
	}
}

// Track is BeginScope with the matching EndScope returned for defer.
func (p *Profiler) Track(name string) func() {
	p.BeginScope(name)
	return func() { p.EndScope(name) }
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Frame records a presented frame and refreshes FPS once a second has passed.
func (p *Profiler) Frame() {
	now := p.now()
	if p.frameStart.IsZero() {
		p.frameStart = now
		return
	}
	p.frames++
	if elapsed := now.Sub(p.frameStart); elapsed >= time.Second {
		p.FPS = float64(p.frames) / elapsed.Seconds()
		p.frames = 0
		p.frameStart = now
	}
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "FPS: %.1f\n", p.FPS)
	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-10s: %.2f ms\n", name, ms)
	}

	if len(p.Counts) > 0 {
		sb.WriteString("Stats:\n")
		keys := make([]string, 0, len(p.Counts))
		for k := range p.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %-10s: %d\n", k, p.Counts[k])
		}
	}
	return sb.String()
}
