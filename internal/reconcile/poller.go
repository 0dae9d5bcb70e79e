package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/playlist"
	"github.com/desertthunder/vidctl/internal/shared"
)

// DefaultPollInterval matches the device's own status cadence.
const DefaultPollInterval = 3 * time.Second

// Update is one poller observation delivered to the UI layer.
// Err is set on a failed poll; Snapshot then still carries the last-known
// good state (fail-soft), and Status is nil.
type Update struct {
	Snapshot playlist.Snapshot
	Status   *player.Status
	Err      error
}

// Poller runs the repeating status fetch.
//
// Ticks fire on a fixed period regardless of how long a fetch takes, but a
// tick that arrives while a fetch is still outstanding is skipped so
// concurrent requests never pile up. Lifecycle is tied to the context given
// to Start; Stop is idempotent and safe to call from any goroutine.
type Poller struct {
	rec      *Reconciler
	interval time.Duration
	logger   *log.Logger

	updates  chan Update
	inFlight atomic.Bool
	fetches  sync.WaitGroup
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a Poller over the given Reconciler.
// interval defaults to [DefaultPollInterval]; logger defaults to stderr.
func NewPoller(rec *Reconciler, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Poller{
		rec:      rec,
		interval: interval,
		logger:   logger,
		updates:  make(chan Update, 16),
		done:     make(chan struct{}),
	}
}

// Updates returns the channel of poll observations. Closed after Stop (or
// context cancellation) once the polling goroutine has drained.
func (p *Poller) Updates() <-chan Update {
	return p.updates
}

// Start launches the polling loop. The first poll fires immediately, then
// every interval. Start must be called at most once.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				// In-flight fetch goroutines bail out on ctx.Done, so this
				// cannot close the channel under a pending send.
				p.fetches.Wait()
				close(p.updates)
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to finish.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
			<-p.done
		}
	})
}

// poll runs one status fetch unless the previous one is still in flight.
func (p *Poller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("skipping poll tick, previous fetch still in flight")
		return
	}

	p.fetches.Add(1)
	go func() {
		defer p.fetches.Done()
		defer p.inFlight.Store(false)

		status, err := p.rec.Poll(ctx)
		if err != nil && ctx.Err() != nil {
			return
		}
		if err != nil {
			p.logger.Warn("status poll failed", "error", err)
		}

		update := Update{Snapshot: p.rec.State().Snapshot(), Status: status, Err: err}
		select {
		case p.updates <- update:
		case <-ctx.Done():
		}
	}()
}
