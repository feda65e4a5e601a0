package syncpoll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultSettleWindow = 15 * time.Second
)

// Fetcher loads the transactions for a date range. Implementations own any
// retry policy; the poller never retries a failed fetch.
type Fetcher interface {
	Fetch(ctx context.Context, r dto.DateRange) ([]models.Transaction, error)
}

// Snapshot is an immutable view of the poller for presentation.
// Transactions is never nil.
type Snapshot struct {
	Range        *dto.DateRange
	Status       Status
	Transactions []models.Transaction
	Err          error
	UpdatedAt    time.Time
}

// Loading reports that a range is selected but no fetch has finished yet.
func (s Snapshot) Loading() bool {
	return s.Range != nil && s.UpdatedAt.IsZero()
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithSettleWindow(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.settle = d
		}
	}
}

// WithOnUpdate registers an observer. Calls are serialised and arrive in
// publish order; the callback must not call SetRange, Refresh or Stop
// synchronously.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// Poller re-fetches the transactions of the selected date range until the
// aggregator appears to have finished syncing. Each range runs in its own
// cycle goroutine; at most one fetch is outstanding per cycle.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	settle   time.Duration
	onUpdate func(Snapshot)
	clockNow func() time.Time
	after    func(time.Duration) <-chan time.Time

	// notifyMu orders observer calls; taken before mu.
	notifyMu sync.Mutex
	mu       sync.Mutex
	parent   context.Context
	gen      uint64
	cancel   context.CancelFunc
	refresh  chan struct{}
	snap     Snapshot
	wg       sync.WaitGroup
}

// New builds an idle poller. ctx bounds every cycle and carries the logger.
func New(ctx context.Context, fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultInterval,
		settle:   DefaultSettleWindow,
		onUpdate: func(Snapshot) {},
		clockNow: time.Now,
		after:    time.After,
		parent:   ctx,
		snap:     Snapshot{Transactions: []models.Transaction{}},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// SetRange selects the query. A different range discards all sync state and
// starts a new cycle; nil disables fetching. Setting the current range again
// is a no-op.
func (p *Poller) SetRange(r *dto.DateRange) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	if sameRange(p.snap.Range, r) && (r == nil || p.cancel != nil) {
		p.mu.Unlock()
		return
	}
	p.stopLocked()

	var rng *dto.DateRange
	if r != nil {
		cp := *r
		rng = &cp
	}
	p.snap = Snapshot{Range: rng, Transactions: []models.Transaction{}}
	if rng != nil {
		p.startLocked(*rng)
	}
	snap := p.snap
	p.mu.Unlock()

	p.onUpdate(snap)
}

// Refresh fetches the current range again without resetting its sync state.
// A refresh requested during a fetch runs once that fetch has resolved.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refresh == nil {
		return
	}
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the running cycle and waits for it to exit. Nothing is
// published after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) stopLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.refresh = nil
}

func (p *Poller) startLocked(r dto.DateRange) {
	ctx, cancel := context.WithCancel(p.parent)
	refresh := make(chan struct{}, 1)
	p.cancel = cancel
	p.refresh = refresh

	gen := p.gen
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx, gen, r, refresh)
	}()
}

func (p *Poller) run(ctx context.Context, gen uint64, r dto.DateRange, refresh <-chan struct{}) {
	log, ctx := logger.With(ctx, "cycle_id", uuid.NewString(), "range", r.String())
	log.Debug("sync cycle started")

	var st State
	for {
		txs, err := p.fetcher.Fetch(ctx, r)
		if ctx.Err() != nil {
			log.Debug("sync cycle cancelled")
			return
		}

		var next <-chan time.Time
		if err != nil {
			log.Warn("transaction fetch failed", "error", err, "status", string(st.Status))
			// A syncing cycle keeps its schedule. Retrying the failed attempt
			// is the fetcher's job.
			if st.Status == StatusSyncing {
				next = p.after(p.interval)
			}
			p.publish(gen, func(s *Snapshot) {
				s.Err = err
			})
		} else {
			again := st.Observe(txs, p.clockNow(), p.settle)
			if again {
				next = p.after(p.interval)
			}
			log.Debug("transactions observed",
				"count", len(txs),
				"status", string(st.Status),
				"tail_id", st.LastSeenTransactionID)
			p.publish(gen, func(s *Snapshot) {
				s.Status = st.Status
				s.Transactions = nonNil(txs)
				s.Err = nil
			})
			if !again {
				log.Info("sync complete", "count", len(txs))
			}
		}

		select {
		case <-ctx.Done():
			log.Debug("sync cycle cancelled")
			return
		case <-next:
		case <-refresh:
			log.Debug("manual refresh")
		}
	}
}

// publish applies fn to the snapshot and notifies the observer, unless the
// cycle identified by gen has been superseded.
func (p *Poller) publish(gen uint64, fn func(*Snapshot)) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	fn(&p.snap)
	p.snap.UpdatedAt = p.clockNow()
	snap := p.snap
	p.mu.Unlock()

	p.onUpdate(snap)
}

func sameRange(a, b *dto.DateRange) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nonNil(txs []models.Transaction) []models.Transaction {
	if txs == nil {
		return []models.Transaction{}
	}
	return txs
}
