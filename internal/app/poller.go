package app

import (
	"sync"
	"time"
)

// PollState is the status poller's lifecycle state.
type PollState int

const (
	PollIdle PollState = iota
	PollPolling
	PollStopped
)

// StatusPoller re-issues the document status fetch on a fixed interval for
// as long as the last observed status is processing, and stops immediately
// otherwise. One transition rule, fed by Observe on every settlement.
//
// The generation counter makes stop exact on both sides of a fetch: a tick
// that races a stop observes a stale generation and exits without firing,
// and a settlement whose fetch was issued before the stop carries a stale
// generation and is discarded, so a superseded response can never
// resurrect a stopped loop.
type StatusPoller struct {
	mu       sync.Mutex
	interval time.Duration
	refresh  func()
	state    PollState
	gen      uint64
}

func NewStatusPoller(interval time.Duration, refresh func()) *StatusPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &StatusPoller{interval: interval, refresh: refresh}
}

// Generation identifies the poller's current lifetime. Capture it before
// issuing a status fetch and hand it back to Observe on settlement.
func (p *StatusPoller) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Observe feeds the poller a fetched status and applies the transition
// rule: poll iff status == processing. gen must be the generation captured
// when the fetch was issued; a settlement from before a stop (or from
// before another settlement already transitioned the poller) is stale and
// is discarded. Reports whether the settlement was accepted.
func (p *StatusPoller) Observe(status DocumentStatus, gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false
	}
	if status == StatusProcessing {
		if p.state == PollPolling {
			return true
		}
		p.state = PollPolling
		p.gen++
		go p.loop(p.gen)
		return true
	}
	if p.state == PollPolling {
		p.state = PollStopped
		p.gen++
	}
	return true
}

// Stop halts polling regardless of the last observed status.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PollPolling {
		p.state = PollStopped
	}
	p.gen++
}

func (p *StatusPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *StatusPoller) loop(gen uint64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		alive := p.gen == gen && p.state == PollPolling
		p.mu.Unlock()
		if !alive {
			return
		}
		p.refresh()
	}
}
