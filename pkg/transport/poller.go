package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/reglog"
)

// DefaultPollInterval is the default interval between polls.
const DefaultPollInterval = time.Second

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Interval between polls (default: 1s).
	Interval time.Duration

	// OnRecord is invoked with each successfully decoded record
	// (required). It runs on the poll goroutine; a slow callback
	// delays subsequent polls.
	OnRecord func(*codec.Record)

	// OnError is invoked when a poll fails. Optional; failures are
	// captured in the session's traffic log either way.
	OnError func(error)
}

// Poller reads the full layout span from a session on a fixed interval
// and delivers decoded records to a callback.
//
// A poll that runs longer than the interval causes the intervening
// ticks to be dropped rather than queued.
type Poller struct {
	session *Session
	config  PollerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPoller creates a poller over the session.
func NewPoller(session *Session, config PollerConfig) (*Poller, error) {
	if session == nil {
		return nil, fmt.Errorf("poller: session is required")
	}
	if config.OnRecord == nil {
		return nil, fmt.Errorf("poller: OnRecord callback is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}

	return &Poller{
		session: session,
		config:  config,
	}, nil
}

// Start begins the poll loop. The first poll runs immediately.
// Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	p.session.logState(reglog.StateEntityPoller, "stopped", "running", "")
	go p.loop(ctx)
}

// Stop stops polling and waits for the loop to exit.
// Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done
	p.session.logState(reglog.StateEntityPoller, "running", "stopped", "")
}

// IsRunning returns true if the poll loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// loop is the main poll loop.
func (p *Poller) loop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Initial poll
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll performs one read cycle.
func (p *Poller) poll(ctx context.Context) {
	record, err := p.session.ReadAll(ctx)
	if err != nil {
		if p.config.OnError != nil {
			p.config.OnError(err)
		}
		return
	}
	p.config.OnRecord(record)
}
