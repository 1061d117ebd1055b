package service

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/internhub/portal/internal/core/domain"
)

const (
	// DateLayout renders the shared date as an ISO-8601 calendar date.
	DateLayout = "2006-01-02"
	// TimeLayout renders the shared time on a 12-hour clock.
	TimeLayout = "3:04 PM"

	tickInterval = time.Second
)

// Snapshot is the shared clock published to subscribers.
type Snapshot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// TickerFunc starts a recurring timer and returns its channel and a stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ProviderOption customises a ContextProvider.
type ProviderOption func(*ContextProvider)

// WithClock replaces the host clock.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *ContextProvider) { p.now = now }
}

// WithTicker replaces the 1-second timer source.
func WithTicker(f TickerFunc) ProviderOption {
	return func(p *ContextProvider) { p.newTicker = f }
}

// WithTaskTTL bounds how long a selected task is kept for an idle scope.
func WithTaskTTL(ttl time.Duration) ProviderOption {
	return func(p *ContextProvider) { p.taskTTL = ttl }
}

// ContextProvider is the process-wide store shared by all pages: the current
// date and time in a fixed timezone, recomputed every second while started,
// and the task each session scope last selected.
type ContextProvider struct {
	loc       *time.Location
	now       func() time.Time
	newTicker TickerFunc
	taskTTL   time.Duration
	log       zerolog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[uint64]func(Snapshot)
	nextID   uint64
	cancel   context.CancelFunc
	done     chan struct{}

	tasks *cache.Cache
}

func NewContextProvider(loc *time.Location, log zerolog.Logger, opts ...ProviderOption) *ContextProvider {
	if loc == nil {
		loc = time.UTC
	}
	p := &ContextProvider{
		loc:       loc,
		now:       time.Now,
		newTicker: realTicker,
		taskTTL:   domain.DefaultSessionTTL,
		log:       log,
		subs:      make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = cache.New(p.taskTTL, 2*p.taskTTL)
	p.snapshot = p.compute()
	return p
}

func (p *ContextProvider) compute() Snapshot {
	t := p.now().In(p.loc)
	return Snapshot{Date: t.Format(DateLayout), Time: t.Format(TimeLayout)}
}

// Location is the timezone the clock is rendered in.
func (p *ContextProvider) Location() *time.Location {
	return p.loc
}

// Snapshot returns the last computed clock.
func (p *ContextProvider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Refresh recomputes the clock from the host time and publishes it.
// Each value is derived from the host clock alone, so ticks never drift.
func (p *ContextProvider) Refresh() Snapshot {
	s := p.compute()

	p.mu.Lock()
	p.snapshot = s
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return s
}

// Start launches the 1-second timer. It is a no-op while already running.
// The timer stops on Stop or when ctx is cancelled.
func (p *ContextProvider) Start(ctx context.Context) {
	p.mu.Lock()
	if p.done != nil {
		select {
		case <-p.done:
		default:
			p.mu.Unlock()
			return
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := p.newTicker(tickInterval)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	p.Refresh()
	p.log.Debug().Str("timezone", p.loc.String()).Msg("clock started")

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				p.Refresh()
			}
		}
	}()
}

// Stop cancels the timer and waits for it to exit. Only the first call has
// any effect.
func (p *ContextProvider) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Debug().Msg("clock stopped")
}

// Running reports whether the timer goroutine is alive.
func (p *ContextProvider) Running() bool {
	p.mu.RLock()
	done := p.done
	p.mu.RUnlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Subscribe registers fn for every published snapshot. The returned func
// unsubscribes; calling it more than once is harmless.
func (p *ContextProvider) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (p *ContextProvider) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// SelectTask records task as scope's selection, replacing any previous one.
func (p *ContextProvider) SelectTask(scope string, task domain.Task) {
	p.tasks.Set(scope, task, cache.DefaultExpiration)
}

// SelectedTask returns scope's last selection.
func (p *ContextProvider) SelectedTask(scope string) (domain.Task, bool) {
	v, ok := p.tasks.Get(scope)
	if !ok {
		return nil, false
	}
	task, ok := v.(domain.Task)
	return task, ok
}
